// Package inspect selects a container inspection strategy by file extension.
//
// .mpd manifests are parsed directly, .mp4/.m4v files go through Bento4
// mp4info, and .webm/.mkv/.ogg files through ffprobe. Any other extension is
// reported as services.ErrUnsupportedContainer so callers can warn and skip.
package inspect
