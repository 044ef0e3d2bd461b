// Package main hosts the marquee CLI entrypoint and command graph.
//
// The Cobra command tree resolves configuration once, builds the ingestion
// runtime and reports results. sweep walks the whole library; identify, inspect
// and deps are troubleshooting helpers that exercise a single component without
// touching the store. Heavy lifting lives in the internal packages.
package main
