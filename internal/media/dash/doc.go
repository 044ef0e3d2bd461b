// Package dash reads MPEG-DASH manifests and reports their adaptation sets as
// media tracks.
package dash
