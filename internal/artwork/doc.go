// Package artwork downloads the ranked image winners of a title, verifies
// that each decodes as an image, records its dimensions and MIME type, and
// writes it atomically under the title's metadata directory.
package artwork
