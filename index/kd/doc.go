// Package kd provides an index.Index backed by a flat k-d tree. Vectors are
// held in a single slice that kdtree.Construct rearranges in place; queries
// run kdtree.SearchKNN with per-call buffers so they can proceed in parallel.
package kd
