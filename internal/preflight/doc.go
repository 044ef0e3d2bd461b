// Package preflight provides readiness checks for the library folders, the
// local dataset and the external catalogs marquee depends on.
//
// The sweep command checks library access before taking its lock; the deps
// command runs the full set and, with --online, contacts TMDB and TVDB.
// Optional services are skipped when their API key is unset.
package preflight
