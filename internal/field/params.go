package field

// Default nonlinearity shape when the control surface leaves it unset.
const (
	defaultBeta  = 4.0
	defaultTheta = 0.5
)

// Params is the full configuration record supplied by the control surface.
// It is validated once per Configure call and treated as read-only for the
// duration of a run.
type Params struct {
	Grid         GridParams   `yaml:"grid"`
	Kernel       KernelParams `yaml:"kernel"`
	Dynamics     Dynamics     `yaml:"dynamics"`
	Nonlinearity Nonlinearity `yaml:"nonlinearity"`
	Drive        DriveSpec    `yaml:"drive"`
	Seed         Seed         `yaml:"seed"`

	// HistoryDepth is how many energy-flow frames the controller retains
	// for layered time-depth views. Zero disables the history.
	HistoryDepth int `yaml:"history_depth"`
}

// withDefaults fills unset fields so the zero-ish config behaves sensibly.
func (p Params) withDefaults() Params {
	if p.Dynamics.Method == "" {
		p.Dynamics.Method = MethodEuler
	}
	if p.Dynamics.Convolution == "" {
		p.Dynamics.Convolution = ConvAuto
	}
	if p.Nonlinearity.Beta == 0 {
		p.Nonlinearity.Beta = defaultBeta
		if p.Nonlinearity.Theta == 0 {
			p.Nonlinearity.Theta = defaultTheta
		}
	}
	if p.Seed.Kind == "" {
		p.Seed.Kind = SeedZero
	}
	return p
}
