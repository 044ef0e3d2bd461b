// Package media defines the container descriptor shared by the inspection
// strategies in its subpackages.
//
// Subpackages:
//   - dash: DASH manifest (.mpd) parsing
//   - mp4info: Bento4 mp4info wrapper for ISO BMFF files
//   - ffprobe: ffprobe wrapper for WebM, Matroska and Ogg files
//   - inspect: extension-based dispatch over the strategies above
package media
