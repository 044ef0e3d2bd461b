// Package naming parses library folder and file names into structured
// identifiers: "<name> (<year>)" title folders, episode folders in date or
// numbered form, and subtitle file names.
//
// Episode grammars have fixed precedence: the date form is tried before the
// numbered form so "2021-03-04" is never read as a multi-part episode number.
package naming
