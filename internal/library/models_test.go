package library

import (
	"encoding/json"
	"testing"
)

func TestNewIdentityGeneratesDistinctKeys(t *testing.T) {
	a := NewIdentity(603, " tt0133093 ")
	b := NewIdentity(603, "tt0133093")
	if a.LocalKey == "" || a.LocalKey == b.LocalKey {
		t.Fatalf("expected distinct non-empty keys, got %q and %q", a.LocalKey, b.LocalKey)
	}
	if a.IMDb != "tt0133093" {
		t.Fatalf("expected trimmed imdb id, got %q", a.IMDb)
	}
	if !a.Valid() {
		t.Fatal("expected identity to be valid")
	}
	if (Identity{LocalKey: "x"}).Valid() {
		t.Fatal("expected identity without tmdb id to be invalid")
	}
}

func TestIdentitySidecarShape(t *testing.T) {
	data, err := Identity{LocalKey: "k", TMDB: 1, IMDb: "tt1"}.Marshal()
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatal(err)
	}
	if raw["uuid"] != "k" || raw["imdb"] != "tt1" || raw["tmdb"] != float64(1) {
		t.Fatalf("unexpected sidecar json: %s", data)
	}
	if _, ok := raw["tvdb"]; ok {
		t.Fatalf("expected tvdb to be omitted when zero: %s", data)
	}
}

func TestEpisodeLinkKey(t *testing.T) {
	if got := (EpisodeLink{Season: "01", Episode: "02"}).Key(); got != "s01e02" {
		t.Fatalf("unexpected key %q", got)
	}
	if got := (EpisodeLink{Episode: "1-2"}).Key(); got != "s1e1-2" {
		t.Fatalf("unexpected key %q", got)
	}
	if got := (EpisodeLink{AirDate: "2021-03-04"}).Key(); got != "2021-03-04" {
		t.Fatalf("unexpected key %q", got)
	}
}

func TestPrimaryNameFallsBackToOriginal(t *testing.T) {
	title := Title{Names: []Name{{Kind: NameLocalized, Value: "L"}, {Kind: NameOriginal, Value: "O"}}}
	if title.PrimaryName() != "O" {
		t.Fatalf("expected original fallback, got %q", title.PrimaryName())
	}
	title.Names = append(title.Names, Name{Kind: NamePrimary, Value: "P"})
	if title.PrimaryName() != "P" {
		t.Fatalf("expected primary name, got %q", title.PrimaryName())
	}
}

func TestEpisodeIdentityIsStable(t *testing.T) {
	show := NewIdentity(1399, "tt0944947")
	link := EpisodeLink{Season: "01", Episode: "02"}
	a := EpisodeIdentity(show, link, 63057, "tt1668746")
	b := EpisodeIdentity(show, link, 63057, "tt1668746")
	if a.LocalKey != b.LocalKey || !a.Valid() {
		t.Fatalf("expected stable valid identity, got %+v and %+v", a, b)
	}
	other := EpisodeIdentity(show, EpisodeLink{Season: "01", Episode: "03"}, 63058, "")
	if other.LocalKey == a.LocalKey {
		t.Fatal("expected distinct keys for distinct episodes")
	}
	if EpisodeIdentity(NewIdentity(1399, ""), link, 63057, "").LocalKey == a.LocalKey {
		t.Fatal("expected keys scoped to the show")
	}
}
