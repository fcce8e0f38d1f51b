package view

import (
	"testing"

	"github.com/avelichko/notekeeper/internal/client/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collection() []models.Note {
	return []models.Note{
		{ID: "1", Title: "Groceries", Content: "milk, eggs"},
		{ID: "2", Title: "Taxes", Content: "file before April"},
		{ID: "3", Title: "ideas", Content: "GROCERY budget app"},
	}
}

func TestProject(t *testing.T) {
	tests := []struct {
		name    string
		term    string
		wantIDs []string
	}{
		{"empty term selects all", "", []string{"1", "2", "3"}},
		{"title substring", "gro", []string{"1", "3"}},
		{"case insensitive in both directions", "GRO", []string{"1", "3"}},
		{"content substring", "april", []string{"2"}},
		{"no match", "grr", nil},
		{"full title", "taxes", []string{"2"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Project(collection(), tc.term)
			ids := make([]string, 0, len(got))
			for _, n := range got {
				ids = append(ids, n.ID)
			}
			if tc.wantIDs == nil {
				assert.Empty(t, ids)
			} else {
				assert.Equal(t, tc.wantIDs, ids)
			}
		})
	}
}

func TestProject_PreservesOrderAndInput(t *testing.T) {
	in := collection()
	got := Project(in, "")

	require.Len(t, got, 3)
	assert.Equal(t, "Groceries", got[0].Title)

	got[0].Title = "mutated"
	assert.Equal(t, "Groceries", in[0].Title, "projection must not mutate input")
}

func TestProject_EmptyCollection(t *testing.T) {
	assert.Empty(t, Project(nil, "anything"))
	assert.Empty(t, Project([]models.Note{}, ""))
}
