// Package library holds the records produced by an ingestion sweep: identities,
// titles with their names, descriptions, credits and ratings, subtitles and
// downloaded images.
package library
