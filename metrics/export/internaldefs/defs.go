package internaldefs

import (
	goGate "github.com/MrEthical07/goGate"
)

// MetricDef names one engine metric for exporters.
type MetricDef struct {
	ID   goGate.MetricID
	Name string
	Help string
}

// CounterDefs lists every engine counter in export order.
var CounterDefs = []MetricDef{
	{ID: goGate.MetricLoginSuccess, Name: "gogate_login_success_total", Help: "Logins that established a session."},
	{ID: goGate.MetricLoginFailure, Name: "gogate_login_failure_total", Help: "Rejected or failed logins."},
	{ID: goGate.MetricLogout, Name: "gogate_logout_total", Help: "Logout operations."},
	{ID: goGate.MetricUserUpdated, Name: "gogate_user_updated_total", Help: "Applied profile updates."},
	{ID: goGate.MetricRoleChanged, Name: "gogate_role_changed_total", Help: "Profile updates that changed the role."},
	{ID: goGate.MetricRestoreHit, Name: "gogate_restore_hit_total", Help: "Restores that rebuilt a persisted session."},
	{ID: goGate.MetricRestoreCold, Name: "gogate_restore_cold_total", Help: "Restores that found no persisted session."},
	{ID: goGate.MetricRestoreMalformed, Name: "gogate_restore_malformed_total", Help: "Restores that rejected malformed persisted data."},
	{ID: goGate.MetricPersistFailure, Name: "gogate_persist_failure_total", Help: "Failed session store writes."},
	{ID: goGate.MetricPersistRetrySuccess, Name: "gogate_persist_retry_success_total", Help: "Writes that resynced a stale store."},
	{ID: goGate.MetricAccessAllowed, Name: "gogate_access_allowed_total", Help: "Allowed access decisions."},
	{ID: goGate.MetricAccessDenied, Name: "gogate_access_denied_total", Help: "Denied access decisions."},
}

// HistogramDefs lists the engine histograms.
var HistogramDefs = []MetricDef{
	{ID: goGate.MetricLoginLatency, Name: "gogate_login_latency_seconds", Help: "Credential verification latency."},
}

// HistogramBounds are the bucket upper bounds in seconds, matching
// goGate.HistogramBounds plus the unbounded bucket.
var HistogramBounds = []string{"0.01", "0.05", "0.1", "0.25", "0.5", "1", "2.5", "+Inf"}

// BucketCount is the fixed number of histogram buckets.
const BucketCount = 8

// NormalizeBuckets pads or truncates raw to [BucketCount] entries.
func NormalizeBuckets(raw []uint64) [BucketCount]uint64 {
	var out [BucketCount]uint64
	copy(out[:], raw)
	return out
}

// CumulativeBuckets turns per-bucket counts into running totals.
func CumulativeBuckets(raw [BucketCount]uint64) [BucketCount]uint64 {
	var out [BucketCount]uint64
	var running uint64
	for i, v := range raw {
		running += v
		out[i] = running
	}
	return out
}
