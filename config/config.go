package config

// Config is the top-level configuration.
type Config struct {
	// Active, when explicitly false, disables instrumentation for the
	// whole process (same effect as STINT_DISABLED).
	Active *bool `yaml:"active,omitempty" json:"active,omitempty"`

	Defaults Defaults `yaml:"defaults,omitempty" json:"defaults,omitempty"`
	Report   Report   `yaml:"report,omitempty" json:"report,omitempty"`
	Logging  Logging  `yaml:"logging,omitempty" json:"logging,omitempty"`
}

// Defaults are the wrapper settings used when no option overrides them.
type Defaults struct {
	RunTimes       int   `yaml:"runTimes,omitempty" json:"runTimes,omitempty"`
	Concurrent     bool  `yaml:"concurrent,omitempty" json:"concurrent,omitempty"`
	Verbose        bool  `yaml:"verbose,omitempty" json:"verbose,omitempty"`
	RecursionCheck *bool `yaml:"recursionCheck,omitempty" json:"recursionCheck,omitempty"`
}

// Report controls report rendering.
type Report struct {
	// Color is one of "auto", "always", "never".
	Color string `yaml:"color,omitempty" json:"color,omitempty"`
}

// Logging controls the warning channel.
type Logging struct {
	// Level is a logrus level name ("warn", "debug", ...).
	Level string `yaml:"level,omitempty" json:"level,omitempty"`
}
