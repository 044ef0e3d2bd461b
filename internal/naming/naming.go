package naming

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"marquee/internal/services"
)

const (
	episodeNumberPart = `\d+(?:(?:[.\-–—]|\s*&\s*)[Ee]?\d+)*`
	episodeTitlePart  = `(?:\s*[.\-–—:_]\s*|\s+)?(.*?)\s*$`
)

var (
	titleYearPattern = regexp.MustCompile(`^(.+) \((\d+)\)$`)

	// Date form: 2021-03-04, optionally followed by a separator and a title.
	episodeDatePattern = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2})(?:(?:\s*[-–—:_.]\s*|\s+)(.*?))?\s*$`)

	// Season word form: "Season 1 Episode 2", "Season 1 - Ep 2 Title".
	episodeSeasonWordPattern = regexp.MustCompile(
		`^[Ss]eason\s*(\d+)\s*[-–—:_.,]?\s*(?:[Ee]pisode|[Ee]p\.?|[Ee])\s*(` + episodeNumberPart + `)` + episodeTitlePart,
	)

	// Cross form: 1x05, 1x05-06, optional title after a separator.
	episodeCrossPattern = regexp.MustCompile(`^(\d+)[xX](\d+(?:(?:[.\-–—]|\s*&\s*)\d+)*)` + episodeTitlePart)

	// Numbered form: optional S<season> marker, optional free text, the episode
	// number (parts joined by . - – — &), optional title after a separator.
	episodeNumberPattern = regexp.MustCompile(
		`^(?:[Ss](\d+))?\s*(.*?)\s*(` + episodeNumberPart + `)` + episodeTitlePart,
	)

	subtitlePattern = regexp.MustCompile(`^(\p{L}+)(?:-(\p{L}+))?(?:\.(.+))?\.([^.]+)$`)

	digitsPattern = regexp.MustCompile(`\d+`)
)

// TitleYear is the parsed form of a "<name> (<year>)" folder.
type TitleYear struct {
	Name string
	Year int
}

// ParseTitleYear parses a movie or show folder name.
func ParseTitleYear(folderName string) (TitleYear, error) {
	m := titleYearPattern.FindStringSubmatch(folderName)
	if m == nil {
		return TitleYear{}, services.Wrap(services.ErrMalformedName, "naming", "title folder",
			fmt.Sprintf("%q does not match \"<name> (<year>)\"", folderName), nil)
	}
	year, err := strconv.Atoi(m[2])
	if err != nil {
		return TitleYear{}, services.Wrap(services.ErrMalformedName, "naming", "title folder",
			fmt.Sprintf("year in %q out of range", folderName), err)
	}
	return TitleYear{Name: m[1], Year: year}, nil
}

// EpisodeIdentifier is the parsed form of an episode folder. Exactly one of
// AirDate or Episode is set. Season and Episode keep the digits as written.
type EpisodeIdentifier struct {
	Season  string
	Episode string
	AirDate string
	Title   string
}

// IsDated reports whether the episode is addressed by air date.
func (e EpisodeIdentifier) IsDated() bool {
	return e.AirDate != ""
}

// LookupNumbers returns the numeric season and episode used for catalog
// lookups. Multi-part episode numbers resolve to their first part and a
// missing season defaults to 1. ok is false for date-form identifiers.
func (e EpisodeIdentifier) LookupNumbers() (season, episode int, ok bool) {
	if e.IsDated() {
		return 0, 0, false
	}
	episode, ok = firstNumber(e.Episode)
	if !ok {
		return 0, 0, false
	}
	season = 1
	if s, found := firstNumber(e.Season); found {
		season = s
	}
	return season, episode, true
}

func firstNumber(value string) (int, bool) {
	digits := digitsPattern.FindString(value)
	if digits == "" {
		return 0, false
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0, false
	}
	return n, true
}

// ParseEpisodeFolder matches an episode folder name against the date form,
// the season word and cross forms, and then the numbered form. Names matching
// none return false.
func ParseEpisodeFolder(folderName string) (EpisodeIdentifier, bool) {
	name := strings.TrimSpace(folderName)
	if name == "" {
		return EpisodeIdentifier{}, false
	}
	if m := episodeDatePattern.FindStringSubmatch(name); m != nil {
		if _, err := time.Parse(time.DateOnly, m[1]); err == nil {
			return EpisodeIdentifier{AirDate: m[1], Title: m[2]}, true
		}
	}
	if m := episodeSeasonWordPattern.FindStringSubmatch(name); m != nil {
		return EpisodeIdentifier{Season: m[1], Episode: m[2], Title: m[3]}, true
	}
	if m := episodeCrossPattern.FindStringSubmatch(name); m != nil {
		return EpisodeIdentifier{Season: m[1], Episode: m[2], Title: m[3]}, true
	}
	if m := episodeNumberPattern.FindStringSubmatch(name); m != nil {
		return EpisodeIdentifier{Season: m[1], Episode: m[3], Title: m[4]}, true
	}
	return EpisodeIdentifier{}, false
}

// SubtitleName is the parsed form of "<lang>[-<region>][.<specifier>].<ext>".
type SubtitleName struct {
	Language  string
	Region    string
	Specifier string
	Format    string
}

// ParseSubtitleFilename parses a file name from a title's subtitles directory.
// The directory is expected to be well formed, so a mismatch is an error.
func ParseSubtitleFilename(filename string) (SubtitleName, error) {
	m := subtitlePattern.FindStringSubmatch(filename)
	if m == nil {
		return SubtitleName{}, services.Wrap(services.ErrMalformedName, "naming", "subtitle file",
			fmt.Sprintf("%q does not match \"<lang>[-<region>][.<specifier>].<ext>\"", filename), nil)
	}
	return SubtitleName{Language: m[1], Region: m[2], Specifier: m[3], Format: m[4]}, nil
}
