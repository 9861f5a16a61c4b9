package jobs

import (
	"context"
	"errors"
	"fmt"

	"github.com/labibilahe-oss/Vaulty-AI-main/internal/pipeline"
)

// StatementSubmitter is the statement channel as seen by the job handler.
type StatementSubmitter interface {
	Submit(ctx context.Context, text string) pipeline.Outcome
}

// NewStatementImportHandler runs each job through the statement channel and
// records the outcome on the job.
func NewStatementImportHandler(channel StatementSubmitter) JobHandler {
	return func(ctx context.Context, job Job) error {
		j, ok := job.(*StatementImportJob)
		if !ok {
			return fmt.Errorf("statement import handler: unexpected job type %s", job.GetType())
		}

		out := channel.Submit(ctx, j.Text)
		j.AttemptID = out.AttemptID
		j.Imported = len(out.Transactions)
		j.Dropped = out.Dropped
		if out.Failed() || errors.Is(out.Err, pipeline.ErrBusy) {
			j.Error = out.Message
			if out.Err != nil {
				return out.Err
			}
			return errors.New(out.Message)
		}
		return nil
	}
}
