package library

import (
	"encoding/json"
	"strings"

	"github.com/google/uuid"

	"marquee/internal/media"
)

// Kind distinguishes the three title shapes held in the library.
type Kind string

const (
	KindMovie   Kind = "movie"
	KindShow    Kind = "show"
	KindEpisode Kind = "episode"
)

// Identity correlates one title across external services and the store. It is
// created once on the first successful lookup and read back from the ids.json
// sidecar on later runs.
type Identity struct {
	LocalKey string `json:"uuid"`
	TMDB     int64  `json:"tmdb"`
	IMDb     string `json:"imdb"`
	TVDB     int64  `json:"tvdb,omitempty"`
}

// NewIdentity returns an identity with a freshly generated local key.
func NewIdentity(tmdbID int64, imdbID string) Identity {
	return Identity{
		LocalKey: uuid.NewString(),
		TMDB:     tmdbID,
		IMDb:     strings.TrimSpace(imdbID),
	}
}

// EpisodeIdentity derives a stable identity for an episode of show. The local
// key is a name-based UUID under the show's key, so reprocessing yields the
// same key without a sidecar.
func EpisodeIdentity(show Identity, link EpisodeLink, tmdbEpisodeID int64, imdbID string) Identity {
	space, err := uuid.Parse(show.LocalKey)
	if err != nil {
		space = uuid.NameSpaceURL
	}
	return Identity{
		LocalKey: uuid.NewSHA1(space, []byte("episode:"+link.Key())).String(),
		TMDB:     tmdbEpisodeID,
		IMDb:     strings.TrimSpace(imdbID),
	}
}

// Valid reports whether the identity carries a local key and a catalog id.
func (i Identity) Valid() bool {
	return strings.TrimSpace(i.LocalKey) != "" && i.TMDB > 0
}

// Marshal renders the sidecar representation.
func (i Identity) Marshal() ([]byte, error) {
	return json.MarshalIndent(i, "", "  ")
}

// NameKind classifies a title name.
type NameKind string

const (
	NamePrimary   NameKind = "primary"
	NameOriginal  NameKind = "original"
	NameLocalized NameKind = "localized"
)

// Name is one display name of a title.
type Name struct {
	Kind      NameKind `json:"kind"`
	Region    string   `json:"region,omitempty"`
	Languages []string `json:"languages,omitempty"`
	Value     string   `json:"value"`
}

// Description is an overview in one region/language.
type Description struct {
	Region    string   `json:"region,omitempty"`
	Languages []string `json:"languages,omitempty"`
	Overview  string   `json:"overview"`
	Tagline   string   `json:"tagline,omitempty"`
}

// Credit links a person to a title.
type Credit struct {
	PersonID   string   `json:"person_id"`
	PersonName string   `json:"person_name"`
	Category   string   `json:"category"`
	Job        string   `json:"job,omitempty"`
	Characters []string `json:"characters,omitempty"`
}

// Rating is the certification of a title in one region.
type Rating struct {
	Region        string `json:"region"`
	Certification string `json:"certification"`
}

// EpisodeLink places an episode within its show. Season and Episode are kept
// verbatim from the folder name (e.g. "01", "1-2"); AirDate is set for
// date-form episodes.
type EpisodeLink struct {
	Season  string `json:"season,omitempty"`
	Episode string `json:"episode,omitempty"`
	AirDate string `json:"air_date,omitempty"`
	Title   string `json:"title,omitempty"`
}

// Key returns a short label such as s01e02 or 2021-03-04 for logging.
func (l EpisodeLink) Key() string {
	if l.AirDate != "" {
		return l.AirDate
	}
	season := l.Season
	if season == "" {
		season = "1"
	}
	return "s" + season + "e" + l.Episode
}

// Title is the canonical record for a movie, show or episode.
type Title struct {
	Kind             Kind
	Path             string
	Identity         Identity
	OriginalLanguage string
	Names            []Name
	Descriptions     []Description
	Cast             []Credit
	Genres           []string
	Ratings          []Rating
	RuntimeMinutes   *int
	YearStart        *int
	YearEnd          *int
	Episode          *EpisodeLink
}

// PrimaryName returns the primary name, falling back to the original name.
func (t Title) PrimaryName() string {
	var original string
	for _, n := range t.Names {
		switch n.Kind {
		case NamePrimary:
			return n.Value
		case NameOriginal:
			if original == "" {
				original = n.Value
			}
		}
	}
	return original
}

// Subtitle describes one subtitle file shipped with a title.
type Subtitle struct {
	Language  string `json:"language"`
	Region    string `json:"region,omitempty"`
	Specifier string `json:"specifier,omitempty"`
	Format    string `json:"format"`
	Src       string `json:"src"`
}

// Image is a downloaded artwork winner stored next to the title.
type Image struct {
	Kind     string `json:"kind"`
	Language string `json:"language,omitempty"`
	MIME     string `json:"mime"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Src      string `json:"src"`
}

// MediaFile is an inspected media file. Src is relative to the library root.
type MediaFile struct {
	Src        string           `json:"src"`
	Descriptor media.Descriptor `json:"descriptor"`
}

// Preview is a supplementary asset such as a thumbnail sprite track.
type Preview struct {
	Kind string `json:"kind"`
	Src  string `json:"src"`
}
