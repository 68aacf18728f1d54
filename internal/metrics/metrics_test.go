package metrics

import (
	"testing"
	"time"
)

func TestNoOpMetrics(t *testing.T) {
	// Package-level funcs must be safe to call with the default no-op backend
	Init()
	RecordHTTPRequest("GET", "/v1/alerts", 200, time.Millisecond)
	RecordFeedFetch("fda_recalls", "success", 1)
	RecordAlertProcessed("fda_recalls", "inserted")
	RecordSyncRun("FDA", time.Second)
	RecordGapAnalysis("process_failure", "detected")
	SetDBConnectionsActive(3)
	RecordDBQuery("exec", "success")

	if Handler() == nil {
		t.Error("Expected non-nil handler")
	}
}
