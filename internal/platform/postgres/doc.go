// Package postgres provides the PostgreSQL implementation of store.BoardStore.
//
// Each board is a single row whose cards live in a JSONB array, so the board
// is read and written as one document. Mutations lock the row with
// SELECT ... FOR UPDATE inside a transaction and rewrite the whole document,
// which keeps card ID assignment atomic across concurrent requests and across
// processes sharing the database. The schema is managed with goose migrations
// embedded in the binary.
package postgres
