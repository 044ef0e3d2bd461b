package media

// Track types reported in a Descriptor.
const (
	TrackAudio = "audio"
	TrackVideo = "video"
)

// Container MIME types produced by the inspection strategies.
const (
	MIMEDash     = "application/dash+xml"
	MIMEMP4      = "video/mp4"
	MIMEWebM     = "video/webm"
	MIMEMatroska = "video/x-matroska"
	MIMEOgg      = "video/ogg"
)

// Descriptor summarises the structure of a media file without decoding payload.
type Descriptor struct {
	ContainerMIME   string   `json:"container"`
	DurationSeconds *float64 `json:"duration,omitempty"`
	Tracks          []Track  `json:"tracks"`
}

// Track is a single audio or video stream. Language is empty when the
// container does not declare one; Bitrate is 0 when unknown.
type Track struct {
	ID       string   `json:"id"`
	Type     string   `json:"type"`
	Codecs   []string `json:"codecs"`
	Language string   `json:"language,omitempty"`
	Bitrate  int64    `json:"bitrate,omitempty"`
}

// CountTracks returns the number of tracks of the given type.
func (d *Descriptor) CountTracks(trackType string) int {
	if d == nil {
		return 0
	}
	count := 0
	for _, track := range d.Tracks {
		if track.Type == trackType {
			count++
		}
	}
	return count
}

// Duration returns the duration in seconds, or 0 when unknown.
func (d *Descriptor) Duration() float64 {
	if d == nil || d.DurationSeconds == nil {
		return 0
	}
	return *d.DurationSeconds
}

// Seconds is a convenience for setting DurationSeconds.
func Seconds(v float64) *float64 {
	return &v
}
