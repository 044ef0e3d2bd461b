// Package imdb reads the local SQLite build of the IMDb datasets: titles,
// alternative titles, episodes, principals, names, ratings and crew.
//
// The expected tables mirror the published TSV files (title, title_aka,
// title_episode, title_principals, name, title_ratings, title_crew) with
// their original column names.
package imdb
