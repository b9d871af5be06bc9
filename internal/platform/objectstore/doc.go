// Package objectstore provides a store.BoardStore backed by an S3-compatible
// object store such as AWS S3 or MinIO.
//
// Each board is kept as one JSON object under a configurable key prefix.
// Objects are never written blindly: creation uses If-None-Match so an
// existing board cannot be overwritten, and every card mutation rewrites the
// document with If-Match on the ETag that was read. A lost race is retried
// from a fresh read a bounded number of times.
package objectstore
