// Package textutil provides text comparison helpers for library folder names
// and filesystem-safe tokens.
package textutil
