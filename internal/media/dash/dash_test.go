package dash

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"marquee/internal/media"
)

const sampleManifest = `<?xml version="1.0" encoding="UTF-8"?>
<MPD xmlns="urn:mpeg:dash:schema:mpd:2011" type="static" mediaPresentationDuration="PT1H2M3.5S">
  <Period id="0">
    <AdaptationSet id="0" contentType="video" mimeType="video/mp4">
      <Representation id="v1" codecs="avc1.64001F" bandwidth="3000000"/>
      <Representation id="v2" codecs="avc1.4D401E" bandwidth="800000"/>
      <Representation id="v3" codecs="avc1.64001F" bandwidth="1500000"/>
    </AdaptationSet>
    <AdaptationSet id="1" mimeType="audio/mp4" lang="eng" codecs="mp4a.40.2">
      <Representation id="a1" bandwidth="128000"/>
      <Representation id="a2" codecs="ec-3" bandwidth="384000"/>
    </AdaptationSet>
    <AdaptationSet id="2" contentType="text" mimeType="text/vtt" lang="en">
      <Representation id="t1" bandwidth="100"/>
    </AdaptationSet>
  </Period>
</MPD>`

func TestDescriptorFromManifest(t *testing.T) {
	mpd, err := Parse([]byte(sampleManifest))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	desc := mpd.Descriptor()
	if desc.ContainerMIME != media.MIMEDash {
		t.Fatalf("unexpected mime %q", desc.ContainerMIME)
	}
	if desc.Duration() != 3723.5 {
		t.Fatalf("unexpected duration %v", desc.Duration())
	}
	want := []media.Track{
		{ID: "0", Type: media.TrackVideo, Codecs: []string{"avc1.64001F", "avc1.4D401E"}, Bitrate: 800000},
		{ID: "1", Type: media.TrackAudio, Codecs: []string{"mp4a.40.2", "ec-3"}, Language: "en", Bitrate: 128000},
	}
	if !reflect.DeepEqual(desc.Tracks, want) {
		t.Fatalf("unexpected tracks:\n got %+v\nwant %+v", desc.Tracks, want)
	}
}

func TestDescriptorReportsRepeatedPeriodsOnce(t *testing.T) {
	manifest := `<MPD xmlns="urn:mpeg:dash:schema:mpd:2011" mediaPresentationDuration="PT10M">
  <Period id="ad">
    <AdaptationSet id="v" contentType="video"><Representation codecs="avc1.4D401E" bandwidth="500000"/></AdaptationSet>
    <AdaptationSet mimeType="audio/mp4" lang="eng"><Representation codecs="mp4a.40.2" bandwidth="96000"/></AdaptationSet>
  </Period>
  <Period id="main">
    <AdaptationSet id="v" contentType="video"><Representation codecs="avc1.64001F" bandwidth="2000000"/></AdaptationSet>
    <AdaptationSet mimeType="audio/mp4" lang="eng"><Representation codecs="mp4a.40.2" bandwidth="128000"/></AdaptationSet>
    <AdaptationSet id="commentary" mimeType="audio/mp4" lang="fre"><Representation codecs="mp4a.40.2" bandwidth="64000"/></AdaptationSet>
  </Period>
</MPD>`
	mpd, err := Parse([]byte(manifest))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	want := []media.Track{
		{ID: "v", Type: media.TrackVideo, Codecs: []string{"avc1.4D401E"}, Bitrate: 500000},
		{ID: "1", Type: media.TrackAudio, Codecs: []string{"mp4a.40.2"}, Language: "en", Bitrate: 96000},
		{ID: "commentary", Type: media.TrackAudio, Codecs: []string{"mp4a.40.2"}, Language: "fr", Bitrate: 64000},
	}
	if got := mpd.Descriptor().Tracks; !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected tracks:\n got %+v\nwant %+v", got, want)
	}
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"PT30S", 30, true},
		{"PT1M0.5S", 60.5, true},
		{"P1DT1H", 90000, true},
		{"PT0H1M59.89S", 119.89, true},
		{"P", 0, false},
		{"PT", 0, false},
		{"1:00:00", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDuration(tt.in)
			if (err == nil) != tt.ok {
				t.Fatalf("ParseDuration(%q) error = %v, want ok=%v", tt.in, err, tt.ok)
			}
			if tt.ok && got != tt.want {
				t.Fatalf("ParseDuration(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestStrategyReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "manifest.mpd")
	if err := os.WriteFile(path, []byte(sampleManifest), 0o644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
	desc, err := Strategy{}.Inspect(context.Background(), path)
	if err != nil {
		t.Fatalf("Inspect returned error: %v", err)
	}
	if len(desc.Tracks) != 2 {
		t.Fatalf("unexpected tracks %+v", desc.Tracks)
	}
}

func TestStrategyRejectsInvalidMarkup(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.mpd")
	if err := os.WriteFile(path, []byte("<MPD><Period>"), 0o644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
	if _, err := (Strategy{}).Inspect(context.Background(), path); err == nil {
		t.Fatal("expected parse error")
	}
}
