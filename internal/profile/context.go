package profile

import "github.com/rs/zerolog"

// Context binds the selected profile to an analysis pass. It replaces any
// notion of a process-wide current profile: callers pass it explicitly, so
// concurrent analyses with different profiles stay isolated.
type Context struct {
	Profile Profile
	log     zerolog.Logger
}

func NewContext(p Profile, log zerolog.Logger) Context {
	return Context{Profile: p, log: log}
}

// Enabled reports whether a check runs under this profile. Checks the
// profile does not mention are enabled (fail-open); unknown check names are
// also enabled but logged, since they usually mean a typo.
func (c Context) Enabled(name CheckName) bool {
	if !knownChecks[name] {
		c.log.Warn().Str("check", string(name)).Msg("Unknown check name, treating as enabled")
		return true
	}
	if c.Profile.Enabled == nil {
		return true
	}
	enabled, ok := c.Profile.Enabled[name]
	if !ok {
		return true
	}
	return enabled
}

// Inverted reports whether the check's flag polarity is flipped.
func (c Context) Inverted(name CheckName) bool {
	return c.Profile.Inverted[name]
}

// Thresholds returns the profile's sensitivities, or the defaults when the
// zero-value Context is used.
func (c Context) Thresholds() Thresholds {
	if c.Profile.Key == "" {
		return DefaultThresholds
	}
	return c.Profile.Thresholds
}
