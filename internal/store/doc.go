// Package store defines the board persistence contract shared by every
// backend, along with the error taxonomy and the SQL transaction helpers used
// by database-backed implementations. Business rules stay independent of the
// storage technology behind the interface.
package store
