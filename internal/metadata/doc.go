// Package metadata merges title metadata from the TMDB catalog, the local
// IMDb dataset, fanart.tv and TVDB into library records.
//
// Identify turns a folder name and year into an Identity. Aggregate fetches
// every source for an identity concurrently; the dataset record and the
// catalog record are required and their failure fails that title only, while
// the remaining fetches degrade to empty fields. AggregateEpisode does the
// same for one episode of a show and never fails the show.
package metadata
