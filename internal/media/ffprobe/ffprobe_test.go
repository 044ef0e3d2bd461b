package ffprobe

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"marquee/internal/media"
	"marquee/internal/services"
)

func TestDescriptorKeepsAudioAndVideo(t *testing.T) {
	result := Result{
		Streams: []Stream{
			{Index: 0, CodecType: "video", CodecName: "vp9", BitRate: "2500000"},
			{Index: 1, CodecType: "audio", CodecName: "opus", Tags: map[string]string{"language": "eng"}},
			{Index: 2, CodecType: "subtitle", CodecName: "webvtt"},
			{Index: 3, CodecType: "attachment"},
		},
		Format: Format{Duration: "123.45"},
	}
	desc := result.Descriptor(media.MIMEWebM)
	if desc.ContainerMIME != media.MIMEWebM {
		t.Fatalf("unexpected mime %q", desc.ContainerMIME)
	}
	if desc.Duration() != 123.45 {
		t.Fatalf("unexpected duration: %v", desc.Duration())
	}
	if len(desc.Tracks) != 2 {
		t.Fatalf("expected 2 tracks, got %+v", desc.Tracks)
	}
	video := desc.Tracks[0]
	if video.ID != "0" || video.Type != media.TrackVideo || video.Codecs[0] != "vp9" || video.Bitrate != 2500000 {
		t.Fatalf("unexpected video track: %+v", video)
	}
	audio := desc.Tracks[1]
	if audio.Language != "" || audio.Bitrate != 0 {
		t.Fatalf("audio track should carry no language or bitrate: %+v", audio)
	}
}

func TestDescriptorHandlesInvalidDuration(t *testing.T) {
	result := Result{Format: Format{Duration: "bad"}}
	if !math.IsNaN(result.DurationSeconds()) {
		t.Fatalf("expected duration NaN, got %v", result.DurationSeconds())
	}
	if desc := result.Descriptor(media.MIMEOgg); desc.DurationSeconds != nil {
		t.Fatalf("expected absent duration, got %v", *desc.DurationSeconds)
	}
}

func TestMIMEForExtension(t *testing.T) {
	tests := map[string]string{
		".webm": media.MIMEWebM,
		".MKV":  media.MIMEMatroska,
		".ogg":  media.MIMEOgg,
	}
	for ext, want := range tests {
		if got := MIMEForExtension(ext); got != want {
			t.Fatalf("MIMEForExtension(%q) = %q, want %q", ext, got, want)
		}
	}
}

func TestStrategyRunsBinary(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "ffprobe")
	body := "#!/bin/sh\ncat <<'JSON'\n{\"streams\":[{\"index\":0,\"codec_type\":\"video\",\"codec_name\":\"theora\"}],\"format\":{\"duration\":\"10.0\"}}\nJSON\n"
	if err := os.WriteFile(script, []byte(body), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}

	desc, err := Strategy{Binary: script}.Inspect(context.Background(), filepath.Join(dir, "clip.ogg"))
	if err != nil {
		t.Fatalf("Inspect returned error: %v", err)
	}
	if desc.ContainerMIME != media.MIMEOgg || desc.CountTracks(media.TrackVideo) != 1 {
		t.Fatalf("unexpected descriptor: %+v", desc)
	}
}

func TestStrategyReportsToolFailure(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "ffprobe")
	if err := os.WriteFile(script, []byte("#!/bin/sh\necho 'Invalid data' >&2\nexit 1\n"), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	_, err := Strategy{Binary: script}.Inspect(context.Background(), filepath.Join(dir, "clip.webm"))
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error, got %v", err)
	}
}
