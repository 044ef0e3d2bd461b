// Package language normalizes the language codes reported by metadata services
// and media containers. Container tracks use ISO 639-2 ("eng", "ger"), catalog
// records use ISO 639-1 ("en") and artwork services use "00" for textless
// images; everything is reduced to the base language so candidates from
// different sources can be compared.
package language
