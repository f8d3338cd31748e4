// Package hclhost loads a scene description from HCL files into an
// in-memory host session. It exists so that tools, demos, and tests can
// stand up a realistic node graph (typed parameters, defaults, locked and
// expression-driven channels, variables, bundles) without a live host
// application on the other end.
//
//	variable "JOB" { value = "/show/proj" }
//
//	node "/obj/geo1" "geo" {
//	  attr "display" { value = true }
//	  parm "scale" {
//	    type    = number
//	    default = 1.0
//	  }
//	  tuple "t" {
//	    type    = number
//	    default = [0, 0, 0]
//	  }
//	}
package hclhost
