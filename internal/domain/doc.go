// Package domain defines the core entities of the flashcard generation
// pipeline: sources, chunks, card candidates, cards, validation results,
// and decks. Entities validate themselves on construction and are treated
// as immutable once created, except for explicit status transitions.
package domain
