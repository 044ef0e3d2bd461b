// Package mp4info wraps Bento4's mp4info utility for ISO BMFF (.mp4, .m4v)
// inspection.
package mp4info
