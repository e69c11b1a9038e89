// Package cache memoizes source lookups for the lifetime of the process so
// repeated audits of the same citation do not re-query the bibliographic
// APIs. Nothing is ever persisted.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// LookupKey builds a cache key for a title/author/year search against one
// source.
func LookupKey(source, title, author, year string) string {
	return key(source, "q", title, author, year)
}

// DOIKey builds a cache key for an exact-DOI lookup against one source.
func DOIKey(source, doi string) string {
	return key(source, "doi", doi)
}

func key(parts ...string) string {
	hash := sha256.Sum256([]byte(strings.Join(parts, "\x00")))
	return "citecheck:v1:" + hex.EncodeToString(hash[:])
}
