package bigquery

import "cloud.google.com/go/bigquery"

// SnapshotRow is one saved version of a ledger slot. Rows are append-only;
// the newest row per snapshot_key is the current value.
type SnapshotRow struct {
	SnapshotID  string                 `bigquery:"snapshot_id"`  // REQUIRED
	SnapshotKey string                 `bigquery:"snapshot_key"` // REQUIRED
	Payload     string                 `bigquery:"payload"`      // REQUIRED (JSON text)
	CreatedTS   bigquery.NullTimestamp `bigquery:"created_ts"`   // REQUIRED
}
