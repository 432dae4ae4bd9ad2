package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"
	"cuelang.org/go/cue/token"

	"github.com/roach88/sqlfinder/internal/compiler"
	"github.com/roach88/sqlfinder/internal/finder"
)

// LoadMode controls how errors are handled during definition loading.
type LoadMode int

const (
	// LoadModeFailFast stops on the first error encountered.
	LoadModeFailFast LoadMode = iota
	// LoadModeCollectAll collects all errors before returning.
	LoadModeCollectAll
)

// LoadResult contains the finders compiled from a directory.
type LoadResult struct {
	Specs     []*compiler.FinderSpec
	CUEValue  cue.Value // The raw CUE value for additional processing
	FileCount int       // Number of CUE files found
}

// Names returns the finder names in sorted order.
func (r *LoadResult) Names() []string {
	names := make([]string, len(r.Specs))
	for i, s := range r.Specs {
		names[i] = s.Name
	}
	sort.Strings(names)
	return names
}

// LoadError represents an error that occurred during definition loading.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// LoadFinders loads and compiles the CUE finder definitions in a directory.
// Finders are declared under the top-level "finder" struct:
//
//	finder: posts: {selector: "template=post", fields: ["title"]}
//
// If mode is LoadModeFailFast, returns on first compile error.
// If mode is LoadModeCollectAll, collects all errors.
func LoadFinders(dir string, mode LoadMode) (*LoadResult, []error) {
	var errs []error

	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("definitions directory not found: %s", dir)}}
	}
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing definitions directory: %v", err)}}
	}
	if !info.IsDir() {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("not a directory: %s", dir)}}
	}

	cueFiles, err := FindCUEFiles(dir)
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeScanError, Message: fmt.Sprintf("error scanning directory: %v", err)}}
	}
	if len(cueFiles) == 0 {
		return nil, []error{&LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no CUE files found in %s", dir)}}
	}

	ctx := cuecontext.New()
	cfg := &load.Config{Dir: dir}
	instances := load.Instances([]string{"."}, cfg)
	if len(instances) == 0 {
		return nil, []error{&LoadError{Code: ErrCodeLoadFailed, Message: "no CUE instances loaded"}}
	}

	inst := instances[0]
	if inst.Err != nil {
		return nil, []error{&LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("loading CUE files: %v", inst.Err)}}
	}

	value := ctx.BuildInstance(inst)
	if err := value.Err(); err != nil {
		return nil, []error{&LoadError{Code: ErrCodeBuildFailed, Message: fmt.Sprintf("building CUE value: %v", err)}}
	}

	result := &LoadResult{
		CUEValue:  value,
		FileCount: len(cueFiles),
	}

	findersVal := value.LookupPath(cue.ParsePath("finder"))
	if findersVal.Exists() {
		iter, iterErr := findersVal.Fields()
		if iterErr != nil {
			return result, []error{&LoadError{Code: ErrCodeGeneric, Message: fmt.Sprintf("iterating finders: %v", iterErr)}}
		}
		for iter.Next() {
			spec, compileErr := compiler.CompileFinder(iter.Value())
			if compileErr != nil {
				errs = append(errs, convertCompileError(compileErr, "finder."+iter.Label()))
				if mode == LoadModeFailFast {
					return result, errs
				}
				continue
			}
			result.Specs = append(result.Specs, spec)
		}
	}

	if len(result.Specs) == 0 && len(errs) == 0 {
		errs = append(errs, &LoadError{Code: ErrCodeGeneric, Message: "no finders found in definitions"})
	}
	return result, errs
}

// loadDefinition loads a directory and returns the resolved definition of
// one finder, with every join inlined.
func loadDefinition(dir, name string) (finder.Definition, error) {
	result, errs := LoadFinders(dir, LoadModeFailFast)
	if len(errs) > 0 {
		return finder.Definition{}, errs[0]
	}
	defs, err := compiler.Resolve(result.Specs)
	if err != nil {
		return finder.Definition{}, convertCompileError(err, "finder."+name)
	}
	def, ok := defs[name]
	if !ok {
		return finder.Definition{}, &LoadError{
			Code:    ErrCodeUnknownFinder,
			Message: fmt.Sprintf("finder %q not found (have %v)", name, result.Names()),
		}
	}
	return def, nil
}

// FindCUEFiles walks the directory and returns all .cue file paths.
func FindCUEFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && filepath.Ext(path) == ".cue" {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

// convertCompileError converts a compiler error to a LoadError with position info.
func convertCompileError(err error, context string) *LoadError {
	var compileErr *compiler.CompileError
	if errors.As(err, &compileErr) {
		return &LoadError{
			Code:    MapFieldToErrorCode(compileErr.Field),
			Message: fmt.Sprintf("%s: %s", compileErr.Field, compileErr.Message),
			Pos:     compileErr.Pos,
		}
	}
	return &LoadError{
		Code:    ErrCodeGeneric,
		Message: fmt.Sprintf("%s: %v", context, err),
	}
}

// Error code constants - unified across all CLI commands.
const (
	ErrCodeGeneric       = "E001" // Generic/unknown error
	ErrCodeScanError     = "E002" // Directory scan error
	ErrCodeNoFiles       = "E003" // No CUE files found
	ErrCodeLoadFailed    = "E004" // CUE load failed
	ErrCodeNotFound      = "E005" // Path not found
	ErrCodeBuildFailed   = "E006" // CUE build failed
	ErrCodeUnknownFinder = "E007" // Finder name not defined
	ErrCodeFinder        = "E008" // Finder configuration or composition failed
	ErrCodeDatabase      = "E009" // Host database error

	// Definition errors share the compiler's validation codes.
	ErrCodeSelector  = compiler.ErrInvalidSelector
	ErrCodeName      = compiler.ErrInvalidName
	ErrCodeFieldType = compiler.ErrInvalidFieldType
	ErrCodeJoin      = compiler.ErrInvalidJoinParams
	ErrCodeLimit     = compiler.ErrInvalidLimit
)

// MapFieldToErrorCode maps a compiler error field to an error code.
func MapFieldToErrorCode(field string) string {
	switch {
	case field == "selector":
		return ErrCodeSelector
	case field == "limit":
		return ErrCodeLimit
	case field == "field.type":
		return ErrCodeFieldType
	case field == "field.name" || field == "raw.alias":
		return ErrCodeName
	case field == "joins" || strings.HasPrefix(field, "join.") || strings.HasSuffix(field, ".joins"):
		return ErrCodeJoin
	default:
		return ErrCodeGeneric
	}
}
