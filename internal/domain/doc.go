// Package domain contains the core business entities of the board API:
// boards, cards, and the card lifecycle rules that keep card IDs unique and
// never reused within a board. It is independent of any storage backend or
// delivery mechanism.
package domain
