package mp4info

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"

	"marquee/internal/language"
	"marquee/internal/media"
	"marquee/internal/services"
)

// Report is the subset of `mp4info --format json` output that marquee reads.
type Report struct {
	Movie  Movie   `json:"movie"`
	Tracks []Track `json:"tracks"`
}

// Movie holds presentation-level fields.
type Movie struct {
	DurationMS float64 `json:"duration_ms"`
	Fragments  bool    `json:"fragments"`
}

// Track is one entry of the tracks array.
type Track struct {
	ID                 int                 `json:"id"`
	Type               string              `json:"type"`
	Language           string              `json:"language"`
	Media              TrackMedia          `json:"media"`
	SampleDescriptions []SampleDescription `json:"sample_descriptions"`
}

// TrackMedia carries per-track timing and the computed bitrate in kbps.
type TrackMedia struct {
	DurationMS float64 `json:"duration_ms"`
	Bitrate    float64 `json:"bitrate"`
}

// SampleDescription describes one sample entry of a track.
type SampleDescription struct {
	Coding       string `json:"coding"`
	CodecsString string `json:"codecs_string"`
}

// Parse decodes an mp4info JSON report. mp4info emits trailing commas before
// closing braces in some versions; they are removed first.
func Parse(data []byte) (Report, error) {
	var report Report
	if err := json.Unmarshal(stripTrailingCommas(data), &report); err != nil {
		return Report{}, fmt.Errorf("mp4info parse: %w", err)
	}
	return report, nil
}

// stripTrailingCommas drops commas followed only by whitespace and a closing
// brace or bracket. String contents are copied untouched.
func stripTrailingCommas(data []byte) []byte {
	out := make([]byte, 0, len(data))
	inString := false
	escaped := false
	for i := 0; i < len(data); i++ {
		c := data[i]
		if inString {
			out = append(out, c)
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case ',':
			j := i + 1
			for j < len(data) && isJSONSpace(data[j]) {
				j++
			}
			if j < len(data) && (data[j] == '}' || data[j] == ']') {
				continue
			}
		}
		out = append(out, c)
	}
	return out
}

func isJSONSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

// Descriptor keeps the first video and first audio track of the report.
func (r Report) Descriptor() *media.Descriptor {
	desc := &media.Descriptor{ContainerMIME: media.MIMEMP4, Tracks: []media.Track{}}
	if r.Movie.DurationMS > 0 {
		desc.DurationSeconds = media.Seconds(r.Movie.DurationMS / 1000)
	}
	seen := map[string]bool{}
	for _, track := range r.Tracks {
		kind := strings.ToLower(strings.TrimSpace(track.Type))
		if kind != media.TrackAudio && kind != media.TrackVideo {
			continue
		}
		if seen[kind] {
			continue
		}
		seen[kind] = true
		out := media.Track{
			ID:       strconv.Itoa(track.ID),
			Type:     kind,
			Language: language.Normalize(track.Language),
		}
		if len(track.SampleDescriptions) > 0 {
			codec := strings.TrimSpace(track.SampleDescriptions[0].CodecsString)
			if codec == "" {
				codec = strings.TrimSpace(track.SampleDescriptions[0].Coding)
			}
			if codec != "" {
				out.Codecs = []string{codec}
			}
		}
		if track.Media.Bitrate > 0 {
			out.Bitrate = int64(math.Round(track.Media.Bitrate * 1000))
		}
		desc.Tracks = append(desc.Tracks, out)
	}
	return desc
}

// Strategy inspects ISO BMFF files with Bento4's mp4info.
type Strategy struct {
	Binary string
}

// Inspect runs mp4info and returns the descriptor for path.
func (s Strategy) Inspect(ctx context.Context, path string) (*media.Descriptor, error) {
	binary := strings.TrimSpace(s.Binary)
	if binary == "" {
		binary = "mp4info"
	}
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("mp4info inspect: empty path")
	}
	output, err := exec.CommandContext(ctx, binary, "--format", "json", path).Output()
	if err != nil {
		detail := ""
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			detail = strings.TrimSpace(string(exitErr.Stderr))
		}
		return nil, services.Wrap(services.ErrExternalTool, "inspect", "mp4info", detail, err)
	}
	report, err := Parse(output)
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "inspect", "mp4info", "parse report", err)
	}
	return report.Descriptor(), nil
}
