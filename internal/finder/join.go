package finder

import (
	"slices"
	"sort"
	"strings"

	"github.com/roach88/sqlfinder/internal/field"
)

// JoinKey is the column pair a child finder is joined on.
//
// Parent names a column of the parent's base subquery, or, written as
// "sibling.column", a column exposed by an already-joined sibling: a child
// joined earlier under the prefix "sibling". Dotted references are always
// resolved on the parent side, never on Child. Child names a column of the
// joined finder's statement.
type JoinKey struct {
	Parent string
	Child  string
}

func (k JoinKey) String() string {
	return k.Parent + "=" + k.Child
}

// JoinOptions configures Join.
type JoinOptions struct {
	// Prefix names the joined result set and prefixes its output columns.
	// Empty means a generated prefix.
	Prefix string

	// Key defaults to Parent = Prefix, Child = "id": the parent field named
	// like the join holds the child's entity id.
	Key JoinKey
}

// Join parameter names accepted by ParseJoinOptions.
const (
	JoinParamPrefix = "prefix"
	JoinParamKey    = "key"
	JoinParamParent = "parent"
	JoinParamChild  = "child"
)

// ParseJoinKey parses "parent=child" or "parent".
func ParseJoinKey(s string) (JoinKey, error) {
	parts := strings.Split(s, "=")
	if len(parts) > 2 {
		return JoinKey{}, configError(ErrCodeMalformedJoinKey, s, "join key must be \"parent=child\" or \"parent\"")
	}
	k := JoinKey{Parent: strings.TrimSpace(parts[0])}
	if len(parts) == 2 {
		k.Child = strings.TrimSpace(parts[1])
		if k.Child == "" {
			return JoinKey{}, configError(ErrCodeMalformedJoinKey, s, "join key has an empty child column")
		}
	}
	if k.Parent == "" {
		return JoinKey{}, configError(ErrCodeMalformedJoinKey, s, "join key has an empty parent column")
	}
	return k, nil
}

// ParseJoinOptions builds JoinOptions from declarative parameters.
// Unknown parameter names are rejected.
func ParseJoinOptions(params map[string]string) (JoinOptions, error) {
	var unknown []string
	for name := range params {
		switch name {
		case JoinParamPrefix, JoinParamKey, JoinParamParent, JoinParamChild:
		default:
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return JoinOptions{}, configError(ErrCodeUnknownJoinParam, unknown[0], "unknown join parameter(s): %s", strings.Join(unknown, ", "))
	}

	opts := JoinOptions{Prefix: params[JoinParamPrefix]}
	if key, ok := params[JoinParamKey]; ok {
		if _, hasParent := params[JoinParamParent]; hasParent {
			return JoinOptions{}, configError(ErrCodeMalformedJoinKey, key, "key and parent are mutually exclusive")
		}
		k, err := ParseJoinKey(key)
		if err != nil {
			return JoinOptions{}, err
		}
		opts.Key = k
	}
	if p, ok := params[JoinParamParent]; ok {
		opts.Key.Parent = p
	}
	if c, ok := params[JoinParamChild]; ok {
		if opts.Key.Child != "" && opts.Key.Child != c {
			return JoinOptions{}, configError(ErrCodeMalformedJoinKey, c, "child column given twice")
		}
		opts.Key.Child = c
	}
	return opts, nil
}

type join struct {
	child  *Finder
	prefix string
	key    JoinKey
}

// Join embeds child under a prefix and returns the prefix used.
//
// The child keeps its own selector and fields; it is only sealed against
// further configuration. Its rows are matched to the parent's rows on the
// join key.
func (f *Finder) Join(child *Finder, opts JoinOptions) (string, error) {
	if err := f.mutable(opts.Prefix); err != nil {
		return "", err
	}
	if child == nil || child == f {
		return "", configError(ErrCodeInvalidOption, opts.Prefix, "cannot join a finder into itself or join nil")
	}
	if child.joined {
		return "", configError(ErrCodeJoined, opts.Prefix, "finder is already joined into another finder")
	}
	if child.contains(f) {
		return "", configError(ErrCodeInvalidOption, opts.Prefix, "join would create a cycle")
	}

	prefix := opts.Prefix
	if prefix == "" {
		prefix = f.prefixes.Generate()
	}
	if err := field.ValidateName(prefix); err != nil {
		return "", fromFieldError(prefix, err)
	}
	for _, j := range f.joins {
		if j.prefix == prefix {
			return "", configError(ErrCodeDuplicatePrefix, prefix, "join prefix %q is already used", prefix)
		}
	}

	key := opts.Key
	if key.Parent == "" {
		key.Parent = prefix
	}
	if key.Child == "" {
		key.Child = field.EntityIDColumn
	}
	if err := f.checkJoinKey(child, key); err != nil {
		return "", err
	}

	child.joined = true
	for _, s := range child.fields {
		s.Freeze()
	}
	f.joins = append(f.joins, &join{child: child, prefix: prefix, key: key})
	return prefix, nil
}

// checkJoinKey verifies both sides of the key address existing columns.
func (f *Finder) checkJoinKey(child *Finder, key JoinKey) error {
	if !slices.Contains(child.OutputColumns(), key.Child) {
		return configError(ErrCodeMalformedJoinKey, key.String(), "joined finder has no column %q", key.Child)
	}

	sibling, column, dotted := strings.Cut(key.Parent, ".")
	if !dotted {
		own := append([]string{field.EntityIDColumn}, f.ownOutputs()...)
		if !slices.Contains(own, key.Parent) {
			return configError(ErrCodeMalformedJoinKey, key.String(), "finder has no column %q", key.Parent)
		}
		return nil
	}
	for _, j := range f.joins {
		if j.prefix != sibling {
			continue
		}
		if !slices.Contains(j.child.OutputColumns(), column) {
			return configError(ErrCodeMalformedJoinKey, key.String(), "join %q has no column %q", sibling, column)
		}
		return nil
	}
	return configError(ErrCodeMalformedJoinKey, key.String(), "no earlier join named %q", sibling)
}

// contains reports whether target is f or joined somewhere below it.
func (f *Finder) contains(target *Finder) bool {
	if f == target {
		return true
	}
	for _, j := range f.joins {
		if j.child.contains(target) {
			return true
		}
	}
	return false
}
