package dash

import (
	"context"
	"encoding/xml"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"marquee/internal/language"
	"marquee/internal/media"
	"marquee/internal/services"
)

// MPD is the subset of a DASH manifest needed for track discovery.
type MPD struct {
	XMLName                   xml.Name `xml:"MPD"`
	MediaPresentationDuration string   `xml:"mediaPresentationDuration,attr"`
	Periods                   []Period `xml:"Period"`
}

// Period groups adaptation sets.
type Period struct {
	AdaptationSets []AdaptationSet `xml:"AdaptationSet"`
}

// AdaptationSet is one switchable group of representations.
type AdaptationSet struct {
	ID              string           `xml:"id,attr"`
	ContentType     string           `xml:"contentType,attr"`
	MimeType        string           `xml:"mimeType,attr"`
	Lang            string           `xml:"lang,attr"`
	Codecs          string           `xml:"codecs,attr"`
	Representations []Representation `xml:"Representation"`
}

// Representation is a single encoding of an adaptation set.
type Representation struct {
	ID        string `xml:"id,attr"`
	MimeType  string `xml:"mimeType,attr"`
	Codecs    string `xml:"codecs,attr"`
	Bandwidth int64  `xml:"bandwidth,attr"`
}

// Parse decodes manifest markup.
func Parse(data []byte) (MPD, error) {
	var mpd MPD
	if err := xml.Unmarshal(data, &mpd); err != nil {
		return MPD{}, fmt.Errorf("dash parse: %w", err)
	}
	return mpd, nil
}

// Descriptor produces one track per audio or video adaptation set. A stream
// repeated across periods is reported once, keyed by adaptation set id (or
// its position within the period) and type.
func (m MPD) Descriptor() *media.Descriptor {
	desc := &media.Descriptor{ContainerMIME: media.MIMEDash, Tracks: []media.Track{}}
	if seconds, err := ParseDuration(m.MediaPresentationDuration); err == nil && seconds > 0 {
		desc.DurationSeconds = media.Seconds(seconds)
	}
	seen := map[[2]string]bool{}
	for _, period := range m.Periods {
		for index, set := range period.AdaptationSets {
			kind := set.trackType()
			if kind != media.TrackAudio && kind != media.TrackVideo {
				continue
			}
			id := strings.TrimSpace(set.ID)
			if id == "" {
				id = strconv.Itoa(index)
			}
			key := [2]string{id, kind}
			if seen[key] {
				continue
			}
			seen[key] = true
			desc.Tracks = append(desc.Tracks, media.Track{
				ID:       id,
				Type:     kind,
				Codecs:   set.codecs(),
				Language: language.Normalize(set.Lang),
				Bitrate:  set.minBandwidth(),
			})
		}
	}
	return desc
}

func (a AdaptationSet) trackType() string {
	if ct := strings.ToLower(strings.TrimSpace(a.ContentType)); ct != "" {
		return ct
	}
	mime := a.MimeType
	if mime == "" && len(a.Representations) > 0 {
		mime = a.Representations[0].MimeType
	}
	prefix, _, _ := strings.Cut(strings.ToLower(strings.TrimSpace(mime)), "/")
	return prefix
}

// codecs returns the ordered union of codec strings across the set and its
// representations.
func (a AdaptationSet) codecs() []string {
	var out []string
	seen := map[string]bool{}
	add := func(list string) {
		for _, codec := range strings.Split(list, ",") {
			codec = strings.TrimSpace(codec)
			if codec == "" || seen[codec] {
				continue
			}
			seen[codec] = true
			out = append(out, codec)
		}
	}
	add(a.Codecs)
	for _, rep := range a.Representations {
		add(rep.Codecs)
	}
	return out
}

func (a AdaptationSet) minBandwidth() int64 {
	var min int64
	for _, rep := range a.Representations {
		if rep.Bandwidth <= 0 {
			continue
		}
		if min == 0 || rep.Bandwidth < min {
			min = rep.Bandwidth
		}
	}
	return min
}

var isoDuration = regexp.MustCompile(`^P(?:(\d+(?:\.\d+)?)Y)?(?:(\d+(?:\.\d+)?)M)?(?:(\d+(?:\.\d+)?)D)?(?:T(?:(\d+(?:\.\d+)?)H)?(?:(\d+(?:\.\d+)?)M)?(?:(\d+(?:\.\d+)?)S)?)?$`)

// ParseDuration converts an ISO 8601 duration such as "PT1H2M3.5S" to seconds.
// Years and months are counted as 365 and 30 days.
func ParseDuration(value string) (float64, error) {
	value = strings.TrimSpace(value)
	match := isoDuration.FindStringSubmatch(value)
	if match == nil || value == "P" || strings.HasSuffix(value, "T") {
		return 0, fmt.Errorf("invalid ISO 8601 duration %q", value)
	}
	units := []float64{365 * 86400, 30 * 86400, 86400, 3600, 60, 1}
	total := 0.0
	for i, unit := range units {
		if match[i+1] == "" {
			continue
		}
		n, err := strconv.ParseFloat(match[i+1], 64)
		if err != nil {
			return 0, fmt.Errorf("invalid ISO 8601 duration %q: %w", value, err)
		}
		total += n * unit
	}
	return total, nil
}

// Strategy inspects DASH manifests.
type Strategy struct{}

// Inspect reads and parses the manifest at path.
func (Strategy) Inspect(_ context.Context, path string) (*media.Descriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	mpd, err := Parse(data)
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "inspect", "dash", "parse manifest", err)
	}
	return mpd.Descriptor(), nil
}
