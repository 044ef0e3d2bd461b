package scanner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"marquee/internal/library"
	"marquee/internal/logging"
	"marquee/internal/media"
	"marquee/internal/naming"
	"marquee/internal/services"
	"marquee/internal/textutil"
)

const (
	moviesFolder    = "movies"
	showsFolder     = "shows"
	subtitlesFolder = "subtitles"
	previewPath     = "spritesheets/preview.vtt"
	manifestExt     = ".mpd"

	// PreviewThumbnails is the preview kind of a WebVTT thumbnail sprite track.
	PreviewThumbnails = "thumbnails"
)

var (
	mediaExtensions    = []string{".mp4", ".m4v", ".webm", ".mkv", ".ogg"}
	subtitleExtensions = []string{".srt", ".ttml", ".ass", ".vtt"}
)

// Inspector reads container structure from a media file.
type Inspector interface {
	Inspect(ctx context.Context, path string) (*media.Descriptor, error)
}

// Layout locates the movie and show collections under the library root.
// Either directory may be empty when the library has no such folder.
type Layout struct {
	Root      string
	MoviesDir string
	ShowsDir  string
}

// EpisodeFolder is an episode directory inside a show.
type EpisodeFolder struct {
	Path string
	Name string
	ID   naming.EpisodeIdentifier
}

// Link converts the folder's identifier to a library episode link.
func (e EpisodeFolder) Link() library.EpisodeLink {
	return library.EpisodeLink{
		Season:  e.ID.Season,
		Episode: e.ID.Episode,
		AirDate: e.ID.AirDate,
		Title:   e.ID.Title,
	}
}

// Assets are the files found in a title directory.
type Assets struct {
	Media     []library.MediaFile
	Subtitles []library.Subtitle
	Previews  []library.Preview
}

// Scanner walks a library tree.
type Scanner struct {
	root      string
	inspector Inspector
	logger    *slog.Logger
}

// New creates a Scanner rooted at root.
func New(root string, inspector Inspector, logger *slog.Logger) *Scanner {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Scanner{root: filepath.Clean(root), inspector: inspector, logger: logger}
}

// Root returns the library root.
func (s *Scanner) Root() string {
	return s.root
}

// Locate finds the movies and shows folders, matching names without regard to
// case or punctuation.
func (s *Scanner) Locate() (Layout, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return Layout{}, fmt.Errorf("read library root: %w", err)
	}
	layout := Layout{Root: s.root}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		switch textutil.FoldKey(entry.Name()) {
		case moviesFolder:
			if layout.MoviesDir == "" {
				layout.MoviesDir = filepath.Join(s.root, entry.Name())
			}
		case showsFolder:
			if layout.ShowsDir == "" {
				layout.ShowsDir = filepath.Join(s.root, entry.Name())
			}
		}
	}
	return layout, nil
}

// ListMovies returns the movie directories in name order.
func (s *Scanner) ListMovies(layout Layout) ([]string, error) {
	return listDirs(layout.MoviesDir)
}

// ListShows returns the show directories in name order.
func (s *Scanner) ListShows(layout Layout) ([]string, error) {
	return listDirs(layout.ShowsDir)
}

func listDirs(dir string) ([]string, error) {
	if dir == "" {
		return nil, nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}
	var out []string
	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		out = append(out, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(out)
	return out, nil
}

// ListEpisodes returns the episode folders of a show in name order. Folders
// that match no episode grammar are skipped.
func (s *Scanner) ListEpisodes(showDir string) ([]EpisodeFolder, error) {
	dirs, err := listDirs(showDir)
	if err != nil {
		return nil, err
	}
	var out []EpisodeFolder
	for _, dir := range dirs {
		name := filepath.Base(dir)
		id, ok := naming.ParseEpisodeFolder(name)
		if !ok {
			s.logger.Debug("skipping non-episode folder", logging.String("folder", dir))
			continue
		}
		out = append(out, EpisodeFolder{Path: dir, Name: name, ID: id})
	}
	return out, nil
}

// FindMedia inspects the media files, subtitles and previews of a title
// directory. A DASH manifest, when present, is the only media file. Files
// that fail inspection are logged and skipped; a malformed subtitle name is
// an error.
func (s *Scanner) FindMedia(ctx context.Context, dir string) (*Assets, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read title directory: %w", err)
	}
	var files []string
	for _, entry := range entries {
		if entry.Type().IsRegular() && !strings.HasPrefix(entry.Name(), ".") {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)

	mediaFiles := selectMedia(files)
	assets := &Assets{}
	for _, name := range mediaFiles {
		path := filepath.Join(dir, name)
		descriptor, err := s.inspector.Inspect(ctx, path)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			logging.WarnWithContext(s.logger, "media inspection failed", "media_inspection",
				logging.String("file", path),
				logging.String(logging.FieldErrorHint, services.Category(err)),
				logging.String(logging.FieldImpact, "file omitted from media list"),
				logging.Error(err),
			)
			continue
		}
		if descriptor == nil {
			continue
		}
		src, err := s.Src(path)
		if err != nil {
			return nil, err
		}
		assets.Media = append(assets.Media, library.MediaFile{Src: src, Descriptor: *descriptor})
	}

	subtitles, err := s.findSubtitles(filepath.Join(dir, subtitlesFolder))
	if err != nil {
		return nil, err
	}
	assets.Subtitles = subtitles

	preview := filepath.Join(dir, filepath.FromSlash(previewPath))
	if info, err := os.Stat(preview); err == nil && info.Mode().IsRegular() {
		src, err := s.Src(preview)
		if err != nil {
			return nil, err
		}
		assets.Previews = append(assets.Previews, library.Preview{Kind: PreviewThumbnails, Src: src})
	}
	return assets, nil
}

func selectMedia(files []string) []string {
	for _, name := range files {
		if strings.EqualFold(filepath.Ext(name), manifestExt) {
			return []string{name}
		}
	}
	var out []string
	for _, name := range files {
		if hasExtension(name, mediaExtensions) {
			out = append(out, name)
		}
	}
	return out
}

func (s *Scanner) findSubtitles(dir string) ([]library.Subtitle, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read subtitles: %w", err)
	}
	var out []library.Subtitle
	for _, entry := range entries {
		if !entry.Type().IsRegular() || !hasExtension(entry.Name(), subtitleExtensions) {
			continue
		}
		parsed, err := naming.ParseSubtitleFilename(entry.Name())
		if err != nil {
			return nil, err
		}
		src, err := s.Src(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		out = append(out, library.Subtitle{
			Language:  parsed.Language,
			Region:    parsed.Region,
			Specifier: parsed.Specifier,
			Format:    parsed.Format,
			Src:       src,
		})
	}
	return out, nil
}

func hasExtension(name string, exts []string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, candidate := range exts {
		if ext == candidate {
			return true
		}
	}
	return false
}

// Src returns path relative to the library root with every segment
// percent-encoded and joined by "/".
func (s *Scanner) Src(path string) (string, error) {
	rel, err := filepath.Rel(s.root, path)
	if err != nil {
		return "", fmt.Errorf("relative path for %s: %w", path, err)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%s is outside the library root", path)
	}
	segments := strings.Split(filepath.ToSlash(rel), "/")
	for i, segment := range segments {
		segments[i] = url.PathEscape(segment)
	}
	return strings.Join(segments, "/"), nil
}

// RelPath returns path relative to the library root in slash form. It is the
// stable key stored for a title.
func (s *Scanner) RelPath(path string) string {
	rel, err := filepath.Rel(s.root, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}
