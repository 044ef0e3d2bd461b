// Package store persists ingested titles.
//
// Each title is one row keyed by (kind, path); names, descriptions, cast,
// genres, ratings, images, media, subtitles, episodes and previews are child
// rows that are deleted and recreated wholesale on every save. People and
// genres live in shared lookup tables. SQLite (modernc.org/sqlite) and
// PostgreSQL (lib/pq) are supported through database/sql with an embedded
// schema per dialect.
package store
