package stint

import "fmt"

// ConfigError reports an invalid option value. It is returned by Wrap before
// any execution takes place: a misconfigured wrapper never half-runs.
type ConfigError struct {
	Option  string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("stint: invalid %s: %s", e.Option, e.Message)
}
