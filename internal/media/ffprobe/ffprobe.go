package ffprobe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"marquee/internal/media"
	"marquee/internal/services"
)

// Result represents the parsed output from an ffprobe inspection.
type Result struct {
	Streams []Stream `json:"streams"`
	Format  Format   `json:"format"`
}

// Stream describes a single stream in the media container.
type Stream struct {
	Index     int               `json:"index"`
	CodecName string            `json:"codec_name"`
	CodecType string            `json:"codec_type"`
	Profile   string            `json:"profile"`
	Duration  string            `json:"duration"`
	BitRate   string            `json:"bit_rate"`
	Width     int               `json:"width"`
	Height    int               `json:"height"`
	Channels  int               `json:"channels"`
	Tags      map[string]string `json:"tags"`
}

// Format captures container-level metadata extracted by ffprobe.
type Format struct {
	Filename   string `json:"filename"`
	NBStreams  int    `json:"nb_streams"`
	Duration   string `json:"duration"`
	BitRate    string `json:"bit_rate"`
	FormatName string `json:"format_name"`
}

// Probe executes ffprobe against the provided path and decodes the JSON response.
func Probe(ctx context.Context, binary string, path string) (Result, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffprobe"
	}
	path = strings.TrimSpace(path)
	if path == "" {
		return Result{}, errors.New("ffprobe inspect: empty path")
	}

	cmd := exec.CommandContext(ctx, binary, "-v", "error", "-hide_banner", "-show_format", "-show_streams", "-bitexact", "-of", "json", "--", path)
	output, err := cmd.Output()
	if err != nil {
		return Result{}, services.Wrap(services.ErrExternalTool, "inspect", "ffprobe", strings.TrimSpace(stderrOf(err)), err)
	}

	var result Result
	if err := json.Unmarshal(output, &result); err != nil {
		return Result{}, services.Wrap(services.ErrExternalTool, "inspect", "ffprobe", "parse report", err)
	}
	return result, nil
}

// DurationSeconds returns the container duration in seconds, or NaN when the
// value is present but unparseable and 0 when absent.
func (r Result) DurationSeconds() float64 {
	return parseFloat(r.Format.Duration)
}

// Descriptor converts the probe result, keeping audio and video streams only.
// ffprobe does not report a reliable stream language for these containers, so
// tracks carry none.
func (r Result) Descriptor(mime string) *media.Descriptor {
	desc := &media.Descriptor{ContainerMIME: mime, Tracks: []media.Track{}}
	if d := r.DurationSeconds(); d > 0 && !math.IsNaN(d) {
		desc.DurationSeconds = media.Seconds(d)
	}
	for _, stream := range r.Streams {
		kind := strings.ToLower(stream.CodecType)
		if kind != media.TrackAudio && kind != media.TrackVideo {
			continue
		}
		track := media.Track{
			ID:   strconv.Itoa(stream.Index),
			Type: kind,
		}
		if codec := strings.TrimSpace(stream.CodecName); codec != "" {
			track.Codecs = []string{codec}
		}
		if rate := parseFloat(stream.BitRate); rate > 0 && !math.IsNaN(rate) {
			track.Bitrate = int64(math.Round(rate))
		}
		desc.Tracks = append(desc.Tracks, track)
	}
	return desc
}

// Strategy inspects WebM, Matroska and Ogg files with ffprobe.
type Strategy struct {
	Binary string
}

// Inspect runs ffprobe and returns the descriptor for path.
func (s Strategy) Inspect(ctx context.Context, path string) (*media.Descriptor, error) {
	result, err := Probe(ctx, s.Binary, path)
	if err != nil {
		return nil, err
	}
	return result.Descriptor(MIMEForExtension(filepath.Ext(path))), nil
}

// MIMEForExtension maps a probe-handled extension to its container MIME type.
func MIMEForExtension(ext string) string {
	switch strings.ToLower(ext) {
	case ".mkv":
		return media.MIMEMatroska
	case ".ogg", ".ogv":
		return media.MIMEOgg
	default:
		return media.MIMEWebM
	}
}

func stderrOf(err error) string {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return string(exitErr.Stderr)
	}
	return fmt.Sprint(err)
}

func parseFloat(value string) float64 {
	cleaned := strings.TrimSpace(value)
	if cleaned == "" {
		return 0
	}
	if parsed, err := strconv.ParseFloat(cleaned, 64); err == nil {
		return parsed
	}
	return math.NaN()
}
