// Package proxy makes a closed, non-subclassable host node type extensible
// from Go. A proxy.Node holds a host.Node handle and resolves dynamic
// attribute access through an ordered fallback chain:
//
//  1. declared members of the owner struct bound with BindOwner (exported
//     fields and methods),
//  2. attributes and bound methods of the wrapped host node,
//  3. the node's named parameters, surfaced as *Parm handles.
//
// Writes follow the mirror-image rule: a declared owner field is assigned
// locally, an existing parameter name is always routed to the host (never
// shadowed by a local), and anything else lands in a per-proxy dynamic
// attribute map.
//
// Parameter access always yields a handle: Get on a parameter name returns
// a *Parm, and callers reach the scalar with an explicit Parm.Value call.
// Auto-evaluating to a scalar on bare access would make the result type of
// Get depend on host-side state.
//
// Proxies are views. They never own the host object's lifecycle; once the
// host deletes the underlying node, the next access fails with the host's
// own staleness error, untouched, so callers can distinguish a stale handle
// from an attribute that never existed.
package proxy
