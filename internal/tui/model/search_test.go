package model

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VoxDroid/nycschools/internal/db"
	"github.com/VoxDroid/nycschools/internal/format"
	"github.com/VoxDroid/nycschools/internal/store"
	"github.com/VoxDroid/nycschools/internal/tui/adapters"
)

func sqliteBinding(t *testing.T) *QueryBinding {
	t.Helper()
	conn, err := db.Open(filepath.Join(t.TempDir(), "search.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	repo := store.NewRepository(conn)
	_, _, err = repo.UpsertSchools(context.Background(), []store.School{
		{DBN: "01M001", Name: "Alpha High", Borough: "Manhattan"},
		{DBN: "02X002", Name: "Beta High", Borough: "Bronx"},
		{DBN: "03K003", Name: "Gamma Academy", Borough: "Brooklyn"},
	}, nil)
	require.NoError(t, err)
	return NewQueryBinding(adapters.NewRepositoryAdapter(repo), nil)
}

func TestSearchMatchesTextAsTyped(t *testing.T) {
	b := sqliteBinding(t)
	cases := []struct {
		text string
		want []string
	}{
		{"Alp", []string{"Alpha High", "Beta High", "Gamma Academy"}},
		{"Alph", []string{"Alpha High"}},
		{"Alp ", nil},
		{"    ", nil},
		{"high ", nil},
		{" high", []string{"Alpha High", "Beta High"}},
		{"a hi", []string{"Alpha High", "Beta High"}},
	}
	for _, c := range cases {
		rs, err := b.SetQuery(context.Background(), QueryForText(c.text))
		require.NoError(t, err, "text %q", c.text)
		assert.Equal(t, c.want, names(rs), "text %q", c.text)
		if !SearchActive(c.text) {
			continue
		}
		for _, n := range names(rs) {
			assert.True(t, strings.Contains(format.Normalize(n), format.Normalize(c.text)),
				"%q does not contain %q", n, c.text)
		}
	}
}
