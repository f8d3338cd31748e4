// Package memhost is an in-memory implementation of the host contract. It
// backs the test suite, the HCL scene loader, and any consumer that wants a
// scriptable stand-in for a live application: nodes with typed parameters,
// attributes, Go-bound methods, session variables, bundles, and host-side
// deletion with the staleness semantics real bindings exhibit.
package memhost
