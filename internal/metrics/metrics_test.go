package metrics

import (
	"regexp"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

func getTestMetrics() *Metrics {
	return NewWithRegistry(prometheus.NewRegistry(), zap.NewNop())
}

// TestMetricsInitialization tests that all metrics are properly initialized
func TestMetricsInitialization(t *testing.T) {
	m := getTestMetrics()

	collectors := map[string]interface{}{
		"HTTPRequestsTotal":        m.HTTPRequestsTotal,
		"HTTPRequestDuration":      m.HTTPRequestDuration,
		"DBConnectionsOpen":        m.DBConnectionsOpen,
		"DBConnectionsInUse":       m.DBConnectionsInUse,
		"DBConnectionsIdle":        m.DBConnectionsIdle,
		"DBConnectionsMax":         m.DBConnectionsMax,
		"DBConnectionWaitTotal":    m.DBConnectionWaitTotal,
		"DBConnectionWaitDuration": m.DBConnectionWaitDuration,
		"DBQueryDuration":          m.DBQueryDuration,
		"DBQueryErrors":            m.DBQueryErrors,
		"ExternalAPIRequestsTotal": m.ExternalAPIRequestsTotal,
		"ExternalAPIErrors":        m.ExternalAPIErrors,
		"UsersTotal":               m.UsersTotal,
		"SectionsTotal":            m.SectionsTotal,
		"ThreadsTotal":             m.ThreadsTotal,
		"TopicsTotal":              m.TopicsTotal,
		"CommentsTotal":            m.CommentsTotal,
		"TopicCreatedTotal":        m.TopicCreatedTotal,
		"CommentCreatedTotal":      m.CommentCreatedTotal,
		"CascadeDeletionsTotal":    m.CascadeDeletionsTotal,
		"CascadeRowsDeletedTotal":  m.CascadeRowsDeletedTotal,
		"UserTransitionsTotal":     m.UserTransitionsTotal,
		"LoginAttemptsTotal":       m.LoginAttemptsTotal,
	}

	for name, c := range collectors {
		if c == nil {
			t.Errorf("%s should not be nil", name)
		}
	}
}

// TestMetricNamingConvention checks every exported metric is snake_case, namespaced and documented
func TestMetricNamingConvention(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewWithRegistry(registry, zap.NewNop())

	// vectors only appear in Gather output once a label set exists
	m.RecordHTTPRequest("GET", "/api/v1/sections", 200, 0)
	m.RecordDBQuery("select", "sections", 0, nil)
	m.RecordExternalAPICall("s3:PutObject", "PUT", 0, 0, nil)
	m.RecordCascadeDeletion("section", 1, 1, 1)
	m.RecordUserTransition("ban")
	m.RecordLogin("success")
	m.SetUsersTotal("active", 1)

	families, err := registry.Gather()
	if err != nil {
		t.Fatalf("Failed to gather metrics: %v", err)
	}

	snakeCase := regexp.MustCompile(`^forum_api_[a-z0-9]+(_[a-z0-9]+)*$`)
	for _, mf := range families {
		if !snakeCase.MatchString(mf.GetName()) {
			t.Errorf("Metric '%s' is not namespaced snake_case", mf.GetName())
		}
		if mf.GetHelp() == "" {
			t.Errorf("Metric '%s' has an empty help description", mf.GetName())
		}
	}
}

func TestShouldSkipEndpoint(t *testing.T) {
	tests := []struct {
		path string
		skip bool
	}{
		{"/metrics", true},
		{"/health", true},
		{"/ready", true},
		{"/api/v1/metrics", true},
		{"/api/v1/sections", false},
		{"/api/v1/threads/health", false},
		{"/healthz", false},
	}

	for _, tt := range tests {
		if got := ShouldSkipEndpoint(tt.path); got != tt.skip {
			t.Errorf("ShouldSkipEndpoint(%q) = %v, want %v", tt.path, got, tt.skip)
		}
	}
}
