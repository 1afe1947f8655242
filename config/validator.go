package config

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// ValidationError describes a single semantic problem in a config.
type ValidationError struct {
	Path    string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// ValidateConfig runs the semantic checks the schema cannot express and
// returns every problem found.
func ValidateConfig(cfg *Config) []ValidationError {
	var errs []ValidationError

	if cfg.Defaults.RunTimes < 0 {
		errs = append(errs, ValidationError{
			Path:    "defaults.runTimes",
			Message: fmt.Sprintf("must be at least 1, got %d", cfg.Defaults.RunTimes),
		})
	}

	switch cfg.Report.Color {
	case "", "auto", "always", "never":
	default:
		errs = append(errs, ValidationError{
			Path:    "report.color",
			Message: fmt.Sprintf("must be one of auto, always, never, got %q", cfg.Report.Color),
		})
	}

	if cfg.Logging.Level != "" {
		if _, err := logrus.ParseLevel(cfg.Logging.Level); err != nil {
			errs = append(errs, ValidationError{
				Path:    "logging.level",
				Message: fmt.Sprintf("unknown level %q", cfg.Logging.Level),
			})
		}
	}

	return errs
}
