package config

import "strings"

// validate performs startup validation. Failures here are ConfigErrors:
// the operator must fix the file, the process never starts degraded.
func validate(c *Config) error {
	if err := c.Crcon.validate(); err != nil {
		return err
	}
	if err := c.Rcon.validate(); err != nil {
		return err
	}
	if !c.Crcon.Enabled && !c.Rcon.Enabled {
		return &ConfigError{Key: "crcon/rcon", Reason: "at least one transport must be enabled"}
	}
	if err := c.Rotation.validate(); err != nil {
		return err
	}
	if _, err := c.App.Location(); err != nil {
		return err
	}
	return nil
}

func (c *CrconConfig) validate() error {
	if !c.Enabled {
		return nil
	}
	if strings.TrimSpace(c.BaseURL) == "" {
		return &ConfigError{Key: "crcon.base_url", Reason: "required when crcon is enabled"}
	}
	hasToken := strings.TrimSpace(c.BearerToken) != ""
	hasLogin := strings.TrimSpace(c.Username) != "" && strings.TrimSpace(c.Password) != ""
	if !hasToken && !hasLogin {
		return &ConfigError{Key: "crcon", Reason: "requires bearer_token or username+password"}
	}
	return nil
}

func (r *RconConfig) validate() error {
	if !r.Enabled {
		return nil
	}
	if strings.TrimSpace(r.Host) == "" {
		return &ConfigError{Key: "rcon.host", Reason: "required when rcon is enabled"}
	}
	if r.Port <= 0 || r.Port > 65535 {
		return &ConfigError{Key: "rcon.port", Reason: "must be in 1..65535"}
	}
	if strings.TrimSpace(r.Password) == "" {
		return &ConfigError{Key: "rcon.password", Reason: "required when rcon is enabled"}
	}
	return nil
}

func (r *RotationConfig) validate() error {
	if strings.TrimSpace(r.SchedulePath) == "" {
		return &ConfigError{Key: "rotation.schedule_path", Reason: "cannot be empty"}
	}
	return nil
}
