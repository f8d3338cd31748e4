package proxy

// Option customizes how a Node resolves and writes attributes.
type Option func(*settings)

// settings is the resolved option set carried by every Node.
type settings struct {
	parmRead  bool
	parmWrite bool
	parmNames []string

	// freshInstance is consulted by Registry.Resolve only.
	freshInstance bool
}

func defaultSettings() settings {
	return settings{
		parmRead:  true,
		parmWrite: true,
	}
}

// WithParmRead toggles the parameter projection on reads. When disabled,
// Get never falls through to parameters and only declared members and host
// attributes/methods resolve.
func WithParmRead(enabled bool) Option {
	return func(s *settings) { s.parmRead = enabled }
}

// WithParmWrite toggles the parameter projection on writes. When disabled,
// Set on a parameter name creates a local dynamic attribute instead of
// mutating host state.
func WithParmWrite(enabled bool) Option {
	return func(s *settings) { s.parmWrite = enabled }
}

// WithParmNames restricts the projected parameter set to the given names.
// By default every parameter the host reports is projected.
func WithParmNames(names ...string) Option {
	return func(s *settings) { s.parmNames = names }
}

// WithFreshInstance makes Registry.Resolve bypass its per-path wrapper cache
// and build a new wrapper even when one already exists.
func WithFreshInstance() Option {
	return func(s *settings) { s.freshInstance = true }
}
