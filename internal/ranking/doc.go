// Package ranking scores vote-based quality signals with the Wilson score
// lower bound and selects artwork winners per kind and language.
package ranking
