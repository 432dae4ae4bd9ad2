package field

// Option configures a Spec at creation.
type Option func(*Spec) error

// WithAlias exposes the field under a different output name.
func WithAlias(alias string) Option {
	return func(s *Spec) error {
		if err := ValidateName(alias); err != nil {
			return err
		}
		s.alias = alias
		return nil
	}
}

// WithColumns requests sub-columns next to the base column.
func WithColumns(cols ...string) Option {
	return func(s *Spec) error {
		return s.AddColumns(cols...)
	}
}

// WithType fixes the kind and skips registry classification.
func WithType(kind Kind, multiLanguage bool) Option {
	return func(s *Spec) error {
		s.kind = kind
		s.explicitKind = true
		s.languageCapable = multiLanguage
		return nil
	}
}

// WithSiblingSeparator changes how sub-column output names are built.
func WithSiblingSeparator(sep string) Option {
	return func(s *Spec) error {
		if err := validateSiblingSeparator(sep); err != nil {
			return err
		}
		s.siblingSeparator = sep
		return nil
	}
}

// WithSeparator changes the aggregation separator of multi-valued kinds.
func WithSeparator(sep string) Option {
	return func(s *Spec) error {
		s.separator = sep
		return nil
	}
}

// WithStrictLanguage disables the fallback to the default language.
func WithStrictLanguage() Option {
	return func(s *Spec) error {
		s.strictLanguage = true
		return nil
	}
}

// WithoutMultiLanguage always reads the base value column.
func WithoutMultiLanguage() Option {
	return func(s *Spec) error {
		s.multiLanguage = false
		return nil
	}
}
