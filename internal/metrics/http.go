package metrics

import (
	"strconv"
	"strings"
	"time"
)

// probePaths are served at the root and under the API base path
var probePaths = []string{"/metrics", "/health", "/ready"}

// RecordHTTPRequest records one finished request under its route template
func (m *Metrics) RecordHTTPRequest(method, route string, statusCode int, duration time.Duration) {
	m.safeExecute("RecordHTTPRequest", func() {
		m.HTTPRequestsTotal.WithLabelValues(method, route, statusClass(statusCode)).Inc()
		m.HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
	})
}

// statusClass reduces a status code to 2xx..5xx
func statusClass(code int) string {
	if code < 200 || code > 599 {
		return "unknown"
	}
	return strconv.Itoa(code/100) + "xx"
}

// ShouldSkipEndpoint reports whether path is a probe or scrape endpoint
func ShouldSkipEndpoint(path string) bool {
	if rest, ok := strings.CutPrefix(path, "/api/"); ok {
		if i := strings.IndexByte(rest, '/'); i >= 0 {
			path = rest[i:]
		}
	}
	for _, p := range probePaths {
		if path == p {
			return true
		}
	}
	return false
}
