// Package ffprobe provides a typed wrapper around ffprobe JSON output and the
// probe inspection strategy used for WebM, Matroska and Ogg containers.
//
// Key types:
//   - Result: parsed ffprobe output containing streams and format metadata
//   - Strategy: runs ffprobe and converts the result to a media.Descriptor
package ffprobe
