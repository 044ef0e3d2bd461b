// Package fanart fetches logo artwork from fanart.tv.
package fanart
