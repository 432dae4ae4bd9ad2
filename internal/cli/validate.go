package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"cuelang.org/go/cue/token"
	"github.com/spf13/cobra"

	"github.com/roach88/sqlfinder/internal/compiler"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid   bool                       `json:"valid"`
	Finders []string                   `json:"finders,omitempty"`
	Errors  []compiler.ValidationError `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <defs-dir>",
		Short: "Validate finder definitions without a database",
		Long: `Validate CUE finder definitions without touching a database.

Checks selectors, names, field types, join parameters and limits, reports
joins to unknown finders and join cycles. All problems are reported, not
just the first.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, defsDir string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	loadResult, loadErrors := LoadFinders(defsDir, LoadModeCollectAll)

	// Directory not found, no files, CUE does not build.
	if loadResult == nil && len(loadErrors) > 0 {
		return outputLoadError(formatter, loadErrors[0])
	}

	formatter.VerboseLog("Found %d CUE file(s) in %s", loadResult.FileCount, defsDir)

	validationErrors := validateAll(loadResult, formatter)
	for _, err := range loadErrors {
		var loadErr *LoadError
		if errors.As(err, &loadErr) {
			validationErrors = append(validationErrors, compiler.ValidationError{
				Field:   "load",
				Message: loadErr.Message,
				Code:    loadErr.Code,
				Line:    getLineFromCuePos(loadErr.Pos),
			})
		}
	}

	if len(validationErrors) > 0 {
		return outputValidationErrors(formatter, validationErrors)
	}
	return outputValidateSuccess(formatter, loadResult.Names())
}

// validateAll validates every compiled finder and the join references
// between them.
func validateAll(result *LoadResult, formatter *OutputFormatter) []compiler.ValidationError {
	var allErrors []compiler.ValidationError

	known := make(map[string]bool, len(result.Specs))
	for _, spec := range result.Specs {
		known[spec.Name] = true
	}

	for _, spec := range result.Specs {
		formatter.VerboseLog("Validating finder: %s", spec.Name)
		for _, verr := range compiler.Validate(spec) {
			verr.Field = "finder." + spec.Name + "." + verr.Field
			allErrors = append(allErrors, verr)
		}
		for i, ref := range spec.Joins {
			if !known[ref.Finder] {
				allErrors = append(allErrors, compiler.ValidationError{
					Field:   fmt.Sprintf("finder.%s.joins[%d]", spec.Name, i),
					Message: fmt.Sprintf("unknown finder %q", ref.Finder),
					Code:    ErrCodeJoin,
					Line:    getLineFromCuePos(ref.Pos),
				})
			}
		}
	}

	for _, cycle := range compiler.AnalyzeJoins(result.Specs) {
		allErrors = append(allErrors, compiler.ValidationError{
			Field:   "finder." + cycle.Path[0] + ".joins",
			Message: cycle.Message,
			Code:    ErrCodeJoin,
		})
	}

	return allErrors
}

// getLineFromCuePos extracts line number from a token.Pos.
func getLineFromCuePos(pos token.Pos) int {
	if pos.IsValid() {
		return pos.Line()
	}
	return 0
}

// outputValidateSuccess outputs successful validation results.
func outputValidateSuccess(formatter *OutputFormatter, names []string) error {
	if formatter.Format == "json" {
		return formatter.Success(ValidationResult{Valid: true, Finders: names})
	}

	fmt.Fprintf(formatter.Writer, "✓ All finders valid (%d)\n", len(names))
	return nil
}

// outputValidationErrors outputs multiple validation errors.
func outputValidationErrors(formatter *OutputFormatter, errs []compiler.ValidationError) error {
	if formatter.Format == "json" {
		response := CLIResponse{
			Status: "error",
			Data:   ValidationResult{Valid: false, Errors: errs},
			Error: &CLIError{
				Code:    errs[0].Code,
				Message: errs[0].Message,
			},
		}

		encoder := json.NewEncoder(formatter.Writer)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(response); err != nil {
			return err
		}

		// Validation failures = exit code 1 (test/validation failure)
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
	}

	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	fmt.Fprintln(formatter.Writer)

	for _, err := range errs {
		if err.Line > 0 {
			fmt.Fprintf(formatter.Writer, "line %d\n", err.Line)
		}
		fmt.Fprintf(formatter.Writer, "  %s: %s: %s\n\n", err.Code, err.Field, err.Message)
	}

	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
}

// ValidateDefinitionsDir validates all finders in a directory.
// This is a helper function for external callers.
func ValidateDefinitionsDir(defsDir string) ([]compiler.ValidationError, error) {
	loadResult, loadErrors := LoadFinders(defsDir, LoadModeCollectAll)
	if loadResult == nil && len(loadErrors) > 0 {
		return nil, loadErrors[0]
	}

	silent := &OutputFormatter{Format: "text", Writer: io.Discard}
	errs := validateAll(loadResult, silent)
	for _, err := range loadErrors {
		errs = append(errs, compiler.ValidationError{Field: "load", Message: err.Error(), Code: ErrCodeGeneric})
	}
	return errs, nil
}
