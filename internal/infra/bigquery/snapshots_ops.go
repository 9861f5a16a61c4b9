package bigquery

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"cloud.google.com/go/bigquery"
	"github.com/google/uuid"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/iterator"

	"github.com/labibilahe-oss/Vaulty-AI-main/internal/ledger"
)

const snapshotsTable = "snapshots"

// SnapshotStore implements ledger.SnapshotStore on a BigQuery table.
type SnapshotStore struct {
	client    *bigquery.Client
	projectID string
	datasetID string
}

// NewSnapshotStore creates a BigQuery client for projectID and stores
// snapshots in datasetID.snapshots.
func NewSnapshotStore(ctx context.Context, projectID, datasetID string) (*SnapshotStore, error) {
	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("NewSnapshotStore: creating client: %w", err)
	}
	return NewSnapshotStoreWithClient(client, projectID, datasetID), nil
}

// NewSnapshotStoreWithClient uses an existing client.
func NewSnapshotStoreWithClient(client *bigquery.Client, projectID, datasetID string) *SnapshotStore {
	return &SnapshotStore{client: client, projectID: projectID, datasetID: datasetID}
}

// Close closes the BigQuery client connection.
func (s *SnapshotStore) Close() error {
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}

// EnsureTable creates the dataset and snapshots table when missing.
func (s *SnapshotStore) EnsureTable(ctx context.Context) error {
	ds := s.client.DatasetInProject(s.projectID, s.datasetID)
	if err := ds.Create(ctx, &bigquery.DatasetMetadata{}); err != nil && !isAlreadyExists(err) {
		return fmt.Errorf("EnsureTable: create dataset: %w", err)
	}

	schema, err := bigquery.InferSchema(SnapshotRow{})
	if err != nil {
		return fmt.Errorf("EnsureTable: infer schema: %w", err)
	}
	for _, f := range schema {
		f.Required = true
	}
	meta := &bigquery.TableMetadata{
		Schema: schema,
		TimePartitioning: &bigquery.TimePartitioning{
			Field: "created_ts",
		},
	}
	if err := ds.Table(snapshotsTable).Create(ctx, meta); err != nil && !isAlreadyExists(err) {
		return fmt.Errorf("EnsureTable: create table: %w", err)
	}
	return nil
}

// Save appends a new version of key.
func (s *SnapshotStore) Save(ctx context.Context, key string, data []byte) error {
	row := newSnapshotRow(uuid.NewString(), key, data, time.Now())

	inserter := s.client.DatasetInProject(s.projectID, s.datasetID).Table(snapshotsTable).Inserter()
	if err := inserter.Put(ctx, row); err != nil {
		return fmt.Errorf("SnapshotStore.Save: inserting row: %w", err)
	}
	return nil
}

// Load returns the newest version of key.
func (s *SnapshotStore) Load(ctx context.Context, key string) ([]byte, error) {
	q := s.client.Query(latestSnapshotQuery(s.projectID, s.datasetID))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "snapshot_key", Value: key},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("SnapshotStore.Load: query read: %w", err)
	}
	return latestPayload(func(row *SnapshotRow) error { return it.Next(row) })
}

func newSnapshotRow(id, key string, data []byte, now time.Time) *SnapshotRow {
	return &SnapshotRow{
		SnapshotID:  id,
		SnapshotKey: key,
		Payload:     string(data),
		CreatedTS:   bigquery.NullTimestamp{Timestamp: now.UTC(), Valid: true},
	}
}

// latestSnapshotQuery selects the newest row for @snapshot_key.
func latestSnapshotQuery(projectID, datasetID string) string {
	return `
		SELECT snapshot_id, snapshot_key, payload, created_ts
		FROM ` + "`" + projectID + "." + datasetID + "." + snapshotsTable + "`" + `
		WHERE snapshot_key = @snapshot_key
		ORDER BY created_ts DESC
		LIMIT 1
	`
}

// latestPayload reads the first row from next. An empty result is
// ledger.ErrSnapshotNotFound.
func latestPayload(next func(*SnapshotRow) error) ([]byte, error) {
	var row SnapshotRow
	err := next(&row)
	if err == iterator.Done {
		return nil, ledger.ErrSnapshotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("SnapshotStore.Load: iter next: %w", err)
	}
	return []byte(row.Payload), nil
}

func isAlreadyExists(err error) bool {
	var gerr *googleapi.Error
	return errors.As(err, &gerr) && gerr.Code == http.StatusConflict
}

var _ ledger.SnapshotStore = (*SnapshotStore)(nil)
