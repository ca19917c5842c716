// Package graphpath reconstructs the hierarchical path of an element from its
// position in the connector, group and parent graph of a scene.
//
// A path is an ordered list of segments. Each step contributes the segments of
// its ancestor (found through an incoming connector, an explicit parent
// reference or a container in one of its groups), then its own text, then the
// label of the connector leading to the requested destination. Concatenating
// the segments gives the path string.
//
// # Segment grammar
//
// Element text becomes a segment according to
//
//	segment   = [ sep filler ] body
//	sep       = "/"
//	filler    = 1*"-"
//
// When the text starts with the separator followed by at least one filler
// character, the filler run is dropped and the separator kept, so "/---docs"
// becomes "/docs". Any other text, including a bare "/" or "-docs", is used
// verbatim.
//
// # Failure policy
//
// Missing binding targets and unreachable ancestors end the walk quietly and
// the partial path collected so far is returned. The one hard failure is a
// cyclic ancestor chain, reported as a *ResolutionError.
package graphpath
