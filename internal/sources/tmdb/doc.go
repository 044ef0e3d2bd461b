// Package tmdb wraps the TMDB v3 endpoints used for identification and
// metadata aggregation: search, details, external ids, translations,
// certifications, images and season/episode lookups.
package tmdb
