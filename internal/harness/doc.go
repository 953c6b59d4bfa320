// Package harness runs header conformance scenarios.
//
// A scenario is a YAML file holding an inline CUE library, an optional
// generator config and a list of assertions about the header produced
// from them:
//
//	name: pointer_cycle
//	description: Structs that refer to each other through pointers
//	library: |
//	  library: types: {
//	      A: {kind: "composite", fields: [{name: "b", type: "*B"}]}
//	      B: {kind: "composite", fields: [{name: "a", type: "*A"}]}
//	  }
//	config:
//	  directives: false
//	assertions:
//	  - type: type_order
//	    types: [A, B]
//	  - type: contains
//	    text: "typedef struct B B;"
//
// Every scenario is compiled, validated and generated in memory. Failures
// at any stage are captured in the Result with their error code so that
// scenarios can assert on rejected libraries as well as generated headers.
package harness
