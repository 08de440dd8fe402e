// Package bruteforce provides a vector index that answers kNN queries by
// scoring every stored vector. It is the reference the k-d tree index is
// checked against.
package bruteforce
