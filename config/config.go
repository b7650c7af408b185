// Package config reads the process-wide settings spec §6 names -
// preferred_groups and fips_mode - following kgiusti-go-fdo-server's and
// open-policy-agent-opa's idiom of binding environment variables into a
// viper instance and reading typed values back out.
package config

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	keyPreferredGroups = "preferred_groups"
	keyFIPSMode        = "fips_mode"
	envPrefix          = "TLSCORE"
)

// ConfigurationError marks a fatal, startup-time configuration problem,
// mirroring cipherbox.ConfigurationError's role for this layer.
type ConfigurationError struct {
	Reason string
}

func (e ConfigurationError) Error() string {
	return "config: " + e.Reason
}

// Config is the loaded, read-only process configuration. It is safe for
// concurrent reads - nothing in this package mutates a Config after Load
// returns it.
type Config struct {
	v *viper.Viper
}

// Load reads configuration from the environment (TLSCORE_PREFERRED_GROUPS,
// TLSCORE_FIPS_MODE), optionally binding flags from a cobra/pflag flag
// set, matching the fdo-server cmd package's viper.BindPFlags convention.
// Flags bind by name, so only flags named preferred_groups and fips_mode
// are read; such a flag overrides the environment only once it has been
// set (pflag's Changed), otherwise the environment or the built-in
// default applies.
func Load(flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetDefault(keyPreferredGroups, "")
	v.SetDefault(keyFIPSMode, false)

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, errors.Wrap(err, "config: binding flags")
		}
	}

	return &Config{v: v}, nil
}

// PreferredGroups returns the configured ordered curve-name preference
// list, or nil if unset (callers should fall back to registry defaults).
// Each entry may be optionally double-quoted, per spec §6.
func (c *Config) PreferredGroups() []string {
	raw := c.v.GetString(keyPreferredGroups)
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		p = strings.Trim(p, `"`)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// FIPSMode reports whether FIPS-only operation was requested.
func (c *Config) FIPSMode() bool {
	return c.v.GetBool(keyFIPSMode)
}
