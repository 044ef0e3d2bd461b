package main

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"marquee/internal/config"
	"marquee/internal/media"
	"marquee/internal/testsupport"
)

// readyLibrary creates the movies folder and an empty dataset for cfg.
func readyLibrary(t *testing.T, cfg *config.Config) {
	t.Helper()
	testsupport.Mkdir(t, filepath.Join(cfg.Paths.LibraryDir, "Movies"))
	testsupport.NewIMDbDataset(t, cfg.IMDb.DatasetPath)
}

func TestDepsReportsAvailableTools(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedBinaries())
	readyLibrary(t, cfg)
	out, _, err := runCLI(t, writeTestConfig(t, cfg), "deps")
	if err != nil {
		t.Fatalf("deps: %v\n%s", err, out)
	}
	requireContains(t, out, "mp4info")
	requireContains(t, out, "ffprobe")
	requireContains(t, out, "all tools available")
	requireContains(t, out, "[OK] movies folder found")
}

func TestDepsWarnsForMissingOptionalTool(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedBinaries("ffprobe"))
	cfg.Tools.MP4Info = filepath.Join(t.TempDir(), "missing-mp4info")
	readyLibrary(t, cfg)
	out, _, err := runCLI(t, writeTestConfig(t, cfg), "deps")
	if err != nil {
		t.Fatalf("optional tools must not fail deps: %v", err)
	}
	requireContains(t, out, "[WARN] mp4info unavailable")
}

func TestDepsFailsWithoutDataset(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedBinaries())
	testsupport.Mkdir(t, filepath.Join(cfg.Paths.LibraryDir, "Shows"))
	out, _, err := runCLI(t, writeTestConfig(t, cfg), "deps")
	if err == nil {
		t.Fatal("expected deps to fail without a dataset")
	}
	requireContains(t, err.Error(), "1 checks failed")
	requireContains(t, out, "IMDb dataset")
}

func TestInspectPrintsTracks(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedOutput("mp4info", stubMP4Report))
	path := writeTestConfig(t, cfg)
	clip := filepath.Join(t.TempDir(), "clip.mp4")
	testsupport.WriteFile(t, clip, "")

	out, _, err := runCLI(t, path, "inspect", clip)
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	requireContains(t, out, "video/mp4")
	requireContains(t, out, "avc1.64001f")
	requireContains(t, out, "2.5 Mbps")
	requireContains(t, out, "1h30m0s")

	out, _, err = runCLI(t, path, "inspect", "--json", clip)
	if err != nil {
		t.Fatalf("inspect --json: %v", err)
	}
	var descriptor media.Descriptor
	if err := json.Unmarshal([]byte(out), &descriptor); err != nil {
		t.Fatalf("decode descriptor: %v\n%s", err, out)
	}
	if descriptor.ContainerMIME != media.MIMEMP4 || descriptor.CountTracks(media.TrackVideo) != 1 {
		t.Fatalf("unexpected descriptor %+v", descriptor)
	}
}

func TestInspectRejectsUnsupportedExtension(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	cfg := testsupport.NewConfig(t)
	notes := filepath.Join(t.TempDir(), "notes.txt")
	testsupport.WriteFile(t, notes, "hello")

	_, _, err := runCLI(t, writeTestConfig(t, cfg), "inspect", notes)
	if err == nil {
		t.Fatal("expected unsupported extension error")
	}
	requireContains(t, err.Error(), ".mp4")
}

func TestIdentifyPrintsIdentity(t *testing.T) {
	f := newSweepFixture(t)

	out, _, err := runCLI(t, f.configPath, "identify", "Blade Runner", "1982")
	if err != nil {
		t.Fatalf("identify: %v", err)
	}
	requireContains(t, out, "tt0083658")
	requireContains(t, out, "78")

	out, _, err = runCLI(t, f.configPath, "identify", "--details", "--json", "Blade Runner", "1982")
	if err != nil {
		t.Fatalf("identify --details: %v", err)
	}
	var payload struct {
		Identity struct {
			TMDB int64  `json:"tmdb"`
			IMDb string `json:"imdb"`
		} `json:"identity"`
		Title struct {
			Genres []string
		} `json:"title"`
	}
	if err := json.Unmarshal([]byte(out), &payload); err != nil {
		t.Fatalf("decode identify json: %v\n%s", err, out)
	}
	if payload.Identity.TMDB != 78 || len(payload.Title.Genres) == 0 {
		t.Fatalf("unexpected identify payload %+v", payload)
	}
}

func TestIdentifyReportsNoMatch(t *testing.T) {
	f := newSweepFixture(t)
	f.tmdb.JSON("search/movie", `{"results":[]}`)

	_, _, err := runCLI(t, f.configPath, "identify", "Nothing Like It", "1990")
	if err == nil {
		t.Fatal("expected no-match error")
	}
	requireContains(t, err.Error(), "no movie named")

	if _, _, err := runCLI(t, f.configPath, "identify", "Blade Runner", "soon"); err == nil {
		t.Fatal("expected invalid year error")
	}
}
