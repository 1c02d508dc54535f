package csv

import "strings"

// StripHeaderBOM removes a UTF-8 BOM from the first header cell if present.
// The slice is modified in place and returned for convenience.
func StripHeaderBOM(headers []string) []string {
	if len(headers) == 0 {
		return headers
	}
	if strings.HasPrefix(headers[0], utf8BOM) {
		headers[0] = strings.TrimPrefix(headers[0], utf8BOM)
	}
	return headers
}
