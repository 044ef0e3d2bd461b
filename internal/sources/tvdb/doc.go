// Package tvdb looks up TheTVDB series ids for shows identified through TMDB,
// which fanart.tv requires for show artwork.
package tvdb
