// Package view derives the displayed subset of the note collection from a
// live search term. It is a pure projection: no side effects, no reordering.
package view

import (
	"strings"

	"github.com/avelichko/notekeeper/internal/client/models"
)

// Project returns the ordered subsequence of notes whose title or content
// contains term as a case-insensitive substring. The empty term selects all.
// The input slice is never mutated and order is preserved; pin or priority
// based ordering is a presentation concern and does not happen here.
func Project(notes []models.Note, term string) []models.Note {
	needle := strings.ToLower(term)

	out := make([]models.Note, 0, len(notes))
	for _, n := range notes {
		if needle == "" ||
			strings.Contains(strings.ToLower(n.Title), needle) ||
			strings.Contains(strings.ToLower(n.Content), needle) {
			out = append(out, n)
		}
	}
	return out
}
