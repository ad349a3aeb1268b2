package headers

import (
	"fmt"
	"net/http"
	"strings"
)

// Parse converts "Key: Value" strings into an http.Header. Repeated keys
// accumulate values; entries without a colon or with an empty key are rejected.
func Parse(lines []string) (http.Header, error) {
	h := make(http.Header, len(lines))
	for _, line := range lines {
		key, value, ok := strings.Cut(line, ":")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("malformed header %q: expected \"Key: Value\"", line)
		}
		h.Add(key, strings.TrimSpace(value))
	}
	return h, nil
}
