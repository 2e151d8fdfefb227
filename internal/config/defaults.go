package config

import "strings"

const (
	defaultAppEnv       = "dev"
	defaultAppLogLevel  = "info"
	defaultAppHTTPAddr  = ":8787"
	defaultAppTimezone  = "UTC"
	defaultCrconPrefix  = "/api"
	defaultCrconTimeout = 10
	defaultRconTimeout  = 5
	defaultSchedulePath = "configs/weekly_rotation.json"
)

// applyDefaults applies defaults to every sub-config. Fields the operator
// set explicitly (tracked in keys) are never overwritten.
func (c *Config) applyDefaults(keys keySet) {
	c.App.applyDefaults(keys)
	c.Crcon.applyDefaults(keys)
	c.Rcon.applyDefaults(keys)
	c.Rotation.applyDefaults(keys)
}

func (a *AppConfig) applyDefaults(keys keySet) {
	if a == nil {
		return
	}
	applyFieldDefaults(keys,
		stringFieldDefault("app.env", &a.Env, defaultAppEnv),
		stringFieldDefault("app.log_level", &a.LogLevel, defaultAppLogLevel),
		stringFieldDefault("app.http_addr", &a.HTTPAddr, defaultAppHTTPAddr),
		stringFieldDefault("app.timezone", &a.Timezone, defaultAppTimezone),
	)
}

func (c *CrconConfig) applyDefaults(keys keySet) {
	if c == nil {
		return
	}
	applyFieldDefaults(keys,
		boolFieldDefault("crcon.enabled", &c.Enabled, true),
		stringFieldDefault("crcon.api_prefix", &c.APIPrefix, defaultCrconPrefix),
		intFieldDefault("crcon.timeout_seconds", &c.TimeoutSeconds, defaultCrconTimeout),
	)
}

func (r *RconConfig) applyDefaults(keys keySet) {
	if r == nil {
		return
	}
	applyFieldDefaults(keys,
		intFieldDefault("rcon.timeout_seconds", &r.TimeoutSeconds, defaultRconTimeout),
	)
	if !keys.isSet("rcon.enabled") {
		// The raw transport is opt-out once its settings are present.
		r.Enabled = strings.TrimSpace(r.Host) != ""
	}
}

func (r *RotationConfig) applyDefaults(keys keySet) {
	if r == nil {
		return
	}
	applyFieldDefaults(keys,
		stringFieldDefault("rotation.schedule_path", &r.SchedulePath, defaultSchedulePath),
	)
}

func applyFieldDefaults(keys keySet, defs ...fieldDefault) {
	for _, def := range defs {
		if def.apply == nil {
			continue
		}
		if def.key != "" && keys.isSet(def.key) {
			continue
		}
		if def.need != nil && !def.need() {
			continue
		}
		def.apply()
	}
}

func stringFieldDefault(key string, target *string, def string) fieldDefault {
	return fieldDefault{
		key: key,
		need: func() bool {
			return target != nil && strings.TrimSpace(*target) == ""
		},
		apply: func() {
			if target != nil {
				*target = def
			}
		},
	}
}

func intFieldDefault(key string, target *int, def int) fieldDefault {
	return fieldDefault{
		key: key,
		need: func() bool {
			return target != nil && *target <= 0
		},
		apply: func() {
			if target != nil {
				*target = def
			}
		},
	}
}

func boolFieldDefault(key string, target *bool, def bool) fieldDefault {
	return fieldDefault{
		key:  key,
		need: func() bool { return target != nil },
		apply: func() {
			if target != nil {
				*target = def
			}
		},
	}
}
