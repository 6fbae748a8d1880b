// Package workspace implements buildopts.TargetContext over an
// angular.json-style workspace document, plus an in-memory registry with the
// same lookup semantics.
//
// A target's options are its options block merged with each requested
// configuration in order:
//
//	projects.<project>.architect.<target>.options
//	  <- configurations.<c1> <- configurations.<c2> ...
//
// When a reference names no configuration the target's
// defaultConfiguration applies. Older documents use "targets" instead of
// "architect"; both are accepted.
package workspace
