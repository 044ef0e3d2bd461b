// Package ingest drives a library sweep.
//
// Every movie and show folder is processed independently: the identity is
// read from the ids.json sidecar or found through the catalog, media and
// metadata are gathered, the image pool is ranked and downloaded, and the
// record is saved. A failure is confined to its title, and a failing episode
// is confined to that episode. The Report lists one Outcome per folder.
package ingest
