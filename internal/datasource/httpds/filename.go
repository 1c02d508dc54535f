package httpds

import (
	"crypto/sha1"
	"encoding/hex"
	"regexp"
	"strings"
)

// nameCleaner replaces sequences of non-alphanumeric characters with "_".
var nameCleaner = regexp.MustCompile(`[^a-zA-Z0-9]+`)

// HashString returns a stable SHA1 hex digest of s. It is useful for
// deterministic cache identifiers when a natural key is not available.
func HashString(s string) string {
	h := sha1.Sum([]byte(s))
	return hex.EncodeToString(h[:])
}

// SafeName derives a filesystem-safe name from s, e.g. a dataset reference
// like "owner/slug" becomes "owner_slug". Runs of non-alphanumeric
// characters collapse to a single underscore; when nothing alphanumeric
// remains, the SHA1 digest of s is returned instead so the result is never
// empty.
func SafeName(s string) string {
	clean := strings.Trim(nameCleaner.ReplaceAllString(s, "_"), "_")
	if clean == "" {
		return HashString(s)
	}
	return clean
}
