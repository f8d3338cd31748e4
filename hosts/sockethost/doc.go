// Package sockethost reaches a live host application over a socket.io
// bridge. A small shim inside the host's scripting environment answers
// request events (resolve, attr, call, eval, set, ...) and this package
// presents the far side as an ordinary host.Session.
//
// Parameter values cross the wire as type-tagged JSON so that cty types
// survive the round trip. Requests are correlated by id and bounded by the
// caller's context plus a session-level default timeout.
package sockethost
