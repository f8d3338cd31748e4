// Package luahost builds a host session from a Lua script. Where hclhost
// describes a static scene, luahost lets the scene carry behavior: node
// methods are Lua functions, invoked through the embedded interpreter when
// proxy code calls them.
//
// The script drives a `scene` API:
//
//	scene.var("JOB", "/show/proj")
//	scene.node("/obj/geo1", "geo")
//	scene.parm("/obj/geo1", "scale", "number", 1.0)
//	scene.method("/obj/geo1", "cook", function(path)
//	  return "cooked " .. path
//	end)
//
// The Lua state lives as long as the Session; like every host session, it is
// confined to the goroutine that owns it.
package luahost
