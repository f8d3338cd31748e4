package proxy

import "fmt"

// ResolutionError is returned when a proxy cannot be constructed because the
// requested host path does not resolve. It wraps the host's own error.
type ResolutionError struct {
	Path string
	Err  error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("cannot resolve host node %q: %v", e.Path, e.Err)
}

// Unwrap exposes the underlying host error to errors.Is / errors.As.
func (e *ResolutionError) Unwrap() error {
	return e.Err
}

// UnknownAttributeError is returned when an attribute name matches nothing in
// the resolution chain: no declared owner member, no host attribute or
// method, and no parameter.
type UnknownAttributeError struct {
	Attr string
	// Proxy names the proxy type the lookup went through, e.g. "proxy.Node"
	// or the owner struct type when one is bound.
	Proxy string
}

func (e *UnknownAttributeError) Error() string {
	return fmt.Sprintf("unknown attribute %q on %s", e.Attr, e.Proxy)
}
