package jobs

import (
	"context"
	"time"
)

// JobType represents the type of job to be executed.
type JobType string

const (
	// JobTypeImportStatement represents a statement import through the statement channel.
	JobTypeImportStatement JobType = "import_statement"
)

// JobStatus represents the current status of a job.
type JobStatus string

const (
	// JobStatusPending indicates the job is waiting to be processed.
	JobStatusPending JobStatus = "pending"
	// JobStatusRunning indicates the job is currently being processed.
	JobStatusRunning JobStatus = "running"
	// JobStatusCompleted indicates the job completed successfully.
	JobStatusCompleted JobStatus = "completed"
	// JobStatusFailed indicates the job failed.
	JobStatusFailed JobStatus = "failed"
)

// StatementImportJob is one queued statement import.
type StatementImportJob struct {
	// JobID is the unique identifier for this job.
	JobID string `json:"job_id"`

	// Filename is the name of the uploaded statement, if any.
	Filename string `json:"filename,omitempty"`

	// Text is the raw statement text. It is not exposed in job listings.
	Text string `json:"-"`

	// Status is the current status of the job.
	Status JobStatus `json:"status"`

	// AttemptID is the statement channel attempt that ran this job.
	AttemptID string `json:"attempt_id,omitempty"`

	// Imported is the number of transactions committed to the ledger.
	Imported int `json:"imported"`

	// Dropped is the number of records rejected by normalization.
	Dropped int `json:"dropped"`

	// CreatedAt is when the job was created.
	CreatedAt time.Time `json:"created_at"`

	// StartedAt is when the job started processing.
	StartedAt *time.Time `json:"started_at,omitempty"`

	// CompletedAt is when the job completed (success or failure).
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	// Error contains the user-visible failure message if the job failed.
	Error string `json:"error,omitempty"`
}

// Job is a generic interface for all job types.
type Job interface {
	// GetID returns the unique job identifier.
	GetID() string

	// GetType returns the job type.
	GetType() JobType

	// GetStatus returns the current job status.
	GetStatus() JobStatus
}

// GetID implements the Job interface.
func (j *StatementImportJob) GetID() string {
	return j.JobID
}

// GetType implements the Job interface.
func (j *StatementImportJob) GetType() JobType {
	return JobTypeImportStatement
}

// GetStatus implements the Job interface.
func (j *StatementImportJob) GetStatus() JobStatus {
	return j.Status
}

// Publisher defines the interface for publishing jobs to a queue.
type Publisher interface {
	// PublishImportStatement publishes a statement import job.
	PublishImportStatement(ctx context.Context, job *StatementImportJob) error

	// Close closes the publisher and releases resources.
	Close() error
}

// Consumer defines the interface for consuming jobs from a queue.
type Consumer interface {
	// Start begins consuming jobs from the queue.
	// The handler function is called for each job received.
	Start(ctx context.Context, handler JobHandler) error

	// Stop stops consuming jobs and waits for in-flight jobs to complete.
	Stop(ctx context.Context) error
}

// JobHandler is a function that processes a job.
// A returned error marks the job failed; jobs are never retried.
type JobHandler func(ctx context.Context, job Job) error

// JobStore defines the interface for storing and retrieving job status.
type JobStore interface {
	// SaveJob saves or updates a job's state.
	SaveJob(ctx context.Context, job *StatementImportJob) error

	// GetJob retrieves a job by ID.
	GetJob(ctx context.Context, jobID string) (*StatementImportJob, error)

	// ListJobs retrieves jobs with optional filtering.
	ListJobs(ctx context.Context, filter JobFilter) ([]*StatementImportJob, error)

	// UpdateJobStatus updates the status of a job.
	UpdateJobStatus(ctx context.Context, jobID string, status JobStatus, errorMsg string) error
}

// JobFilter defines filtering criteria for listing jobs.
type JobFilter struct {
	// Status filters jobs by status.
	Status JobStatus

	// Limit limits the number of results.
	Limit int

	// Offset for pagination.
	Offset int
}
