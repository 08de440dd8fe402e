// Package knn exposes the k-d tree as a SQLite virtual table.
//
// The flatkd module answers k-nearest-neighbour queries over the points
// table maintained by vector.SQLiteStore:
//
//	CREATE VIRTUAL TABLE nn USING flatkd(k=10);
//	SELECT id, distance FROM nn WHERE id MATCH '[0.5, 0.5]';
//	SELECT id, distance FROM nn WHERE id MATCH ? AND k = 3;
//
// The MATCH argument is a float32 BLOB, a JSON array or a comma separated
// list. Rows come back in ascending squared Euclidean distance.
//
// RegisterModule must run before any other statement on the database. Bind
// builds the tree from the store; MATCH never reads the points table, so a
// write through the store makes MATCH fail with ErrStale until Refresh.
package knn
