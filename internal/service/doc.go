// Package service implements the application logic that sits between the
// HTTP handlers and the board stores.
//
// The board service checks that a board exists before touching its cards,
// validates card content, and normalizes store failures so the API layer can
// map them with errors.Is and errors.As regardless of which backend is
// configured.
package service
