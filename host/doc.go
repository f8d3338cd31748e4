// Package host defines the contract between nodefacade and the application
// that owns the node graph. The host application is treated as a black box:
// it hands out node handles from a path-based factory, exposes attributes
// and callable methods on those handles, and exposes named, typed parameters
// through an indirect handle API.
//
// Everything in the proxy layer is written against these interfaces, so the
// same proxy code runs against an in-memory scene, a Lua-scripted scene, or
// a live application session reached over a socket. Implementations live
// under hosts/.
//
// Host sessions are generally not safe for concurrent use; a session and
// every handle obtained from it are confined to the goroutine that owns it
// unless the implementation documents otherwise.
package host
