package testsupport

import (
	"context"
	"testing"

	"marquee/internal/config"
	"marquee/internal/library"
	"marquee/internal/store"
)

// MustOpenStore opens the configured store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *store.Store {
	t.Helper()

	st, err := store.Open(context.Background(), cfg.Store)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})
	return st
}

// NewMovie saves a bare movie title for tests.
func NewMovie(t testing.TB, st *store.Store, path string) store.TitleRow {
	t.Helper()

	title := library.Title{
		Kind:     library.KindMovie,
		Path:     path,
		Identity: library.NewIdentity(1, "tt0000001"),
		Names:    []library.Name{{Kind: library.NamePrimary, Value: path}},
	}
	row, err := st.UpsertTitle(context.Background(), store.FieldsFor(title, nil))
	if err != nil {
		t.Fatalf("store.UpsertTitle: %v", err)
	}
	return row
}
