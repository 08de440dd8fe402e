// Package vector stores point sets in SQLite and provides the float32
// vector helpers shared by the indexes. It includes:
//   - Point model and Store interface
//   - SQLiteStore: durable storage for point sets
//   - Schema helpers to create the points table
//   - Vector encoding (BLOB) and distance functions
//
// Only the points are stored. A k-d tree is rebuilt from them after loading.
package vector
