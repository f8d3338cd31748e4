package host

import "fmt"

// NotFoundError is returned by Session.Resolve when no node exists at the
// requested path.
type NotFoundError struct {
	Path string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no node exists at path %q", e.Path)
}

// NoSuchAttributeError is returned by Node.Attr when the node has no
// attribute of the requested name.
type NoSuchAttributeError struct {
	Path string
	Attr string
}

func (e *NoSuchAttributeError) Error() string {
	return fmt.Sprintf("node %q has no attribute %q", e.Path, e.Attr)
}

// NoSuchParameterError is returned by Node.Parm and Node.ParmTuple when the
// node has no parameter of the requested name.
type NoSuchParameterError struct {
	Path string
	Parm string
}

func (e *NoSuchParameterError) Error() string {
	return fmt.Sprintf("node %q has no parameter %q", e.Path, e.Parm)
}

// InvalidValueError is returned by Parm.Set when the host rejects the value,
// typically for a type mismatch.
type InvalidValueError struct {
	Path   string
	Reason string
}

func (e *InvalidValueError) Error() string {
	return fmt.Sprintf("invalid value for parameter %q: %s", e.Path, e.Reason)
}

// ReadOnlyError is returned by Parm.Set and Parm.SetExpression when the
// parameter is locked or driven by an expression the host refuses to
// overwrite.
type ReadOnlyError struct {
	Path string
}

func (e *ReadOnlyError) Error() string {
	return fmt.Sprintf("parameter %q is read-only", e.Path)
}

// ObjectDeletedError is what a handle raises once the host has deleted the
// underlying object. The proxy layer propagates it untouched so callers can
// tell a stale handle apart from a name that never resolved.
type ObjectDeletedError struct {
	Path string
}

func (e *ObjectDeletedError) Error() string {
	return fmt.Sprintf("the object at %q has been deleted by the host", e.Path)
}
