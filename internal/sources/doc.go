// Package sources holds the HTTP plumbing shared by the external metadata
// service adapters in its subpackages (tmdb, fanart, tvdb) and the Fetcher
// contract they satisfy. The local IMDb dataset lives in sources/imdb.
package sources
