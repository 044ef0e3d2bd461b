// Package scanner walks the library tree.
//
// The library root holds a movies and a shows folder; each movie or show is a
// "<Name> (<Year>)" directory and each show holds one directory per episode.
// Title directories carry media files, an optional subtitles/ folder, an
// optional spritesheets/preview.vtt and the ids.json identity sidecar.
package scanner
