package imdb

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Title is one row of the title dataset joined with ratings and crew.
type Title struct {
	ID             string
	TitleType      string
	PrimaryTitle   string
	OriginalTitle  string
	IsAdult        bool
	StartYear      *int
	EndYear        *int
	RuntimeMinutes *int
	Genres         []string
	Rating         *Rating
	Directors      []string
	Writers        []string
}

// Rating is the aggregate user rating of a title.
type Rating struct {
	Average float64
	Votes   int64
}

// Aka is an alternative title.
type Aka struct {
	Title           string
	Region          string
	Languages       []string
	Types           []string
	Attributes      []string
	IsOriginalTitle bool
}

// HasType reports whether the aka carries the given type, e.g. "imdbDisplay".
func (a Aka) HasType(kind string) bool {
	for _, t := range a.Types {
		if t == kind {
			return true
		}
	}
	return false
}

// Principal is a principal cast or crew credit.
type Principal struct {
	PersonID   string
	PersonName string
	Category   string
	Job        string
	Characters []string
}

// EpisodeRef links an episode title to its season and number.
type EpisodeRef struct {
	ID      string
	Season  *int
	Episode *int
}

// text scans any SQLite value as a string. NULL and the dataset's "\N"
// placeholder both become "".
type text string

func (t *text) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*t = ""
	case string:
		*t = text(v)
	case []byte:
		*t = text(v)
	case int64:
		*t = text(strconv.FormatInt(v, 10))
	case float64:
		*t = text(strconv.FormatFloat(v, 'f', -1, 64))
	case bool:
		*t = text(strconv.FormatBool(v))
	default:
		return fmt.Errorf("unsupported column type %T", src)
	}
	if *t == `\N` {
		*t = ""
	}
	return nil
}

func (t text) intPtr() *int {
	n, err := strconv.Atoi(strings.TrimSpace(string(t)))
	if err != nil {
		return nil
	}
	return &n
}

func (t text) floatPtr() *float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(string(t)), 64)
	if err != nil {
		return nil
	}
	return &f
}

func (t text) bool() bool {
	switch strings.TrimSpace(string(t)) {
	case "1", "true":
		return true
	}
	return false
}

func (t text) list() []string {
	var out []string
	for _, part := range strings.Split(string(t), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// jsonList decodes the JSON array encoding used by the characters column,
// falling back to a comma-separated list.
func (t text) jsonList() []string {
	value := strings.TrimSpace(string(t))
	if value == "" {
		return nil
	}
	var out []string
	if err := json.Unmarshal([]byte(value), &out); err == nil {
		return out
	}
	return t.list()
}
