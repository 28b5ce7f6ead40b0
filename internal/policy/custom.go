package policy

// Overrides replaces individual fields of a base policy. Empty fields keep
// the base value.
type Overrides struct {
	TargetKeyword  string
	DisableCommand string
	LaunchCommand  string
	EnableCommand  string
}

// IsZero reports whether no field is overridden.
func (o Overrides) IsZero() bool {
	return o == Overrides{}
}

// CustomPolicy wraps a base policy with configured overrides.
type CustomPolicy struct {
	base AppPolicy
	o    Overrides
}

// WithOverrides returns base unchanged when o is empty.
func WithOverrides(base AppPolicy, o Overrides) AppPolicy {
	if o.IsZero() {
		return base
	}
	return &CustomPolicy{base: base, o: o}
}

func (p *CustomPolicy) ID() string { return p.base.ID() }

func (p *CustomPolicy) Name() string { return p.base.Name() + " (customized)" }

func (p *CustomPolicy) TargetKeyword() string {
	return pick(p.o.TargetKeyword, p.base.TargetKeyword())
}

func (p *CustomPolicy) DisableCommand() string {
	return pick(p.o.DisableCommand, p.base.DisableCommand())
}

func (p *CustomPolicy) LaunchCommand() string {
	return pick(p.o.LaunchCommand, p.base.LaunchCommand())
}

func (p *CustomPolicy) EnableCommand() string {
	return pick(p.o.EnableCommand, p.base.EnableCommand())
}

func pick(override, base string) string {
	if override != "" {
		return override
	}
	return base
}

var _ AppPolicy = (*CustomPolicy)(nil)
