// Package index defines a minimal abstraction for exact nearest-neighbour
// indexes over float32 vectors. Implementations in this module are a
// brute-force scan (the reference oracle) and a flat k-d tree.
package index
