package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/labibilahe-oss/Vaulty-AI-main/internal/capture"
	"github.com/labibilahe-oss/Vaulty-AI-main/internal/infra/gcs"
	"github.com/labibilahe-oss/Vaulty-AI-main/internal/jobs"
	"github.com/labibilahe-oss/Vaulty-AI-main/internal/jobs/inmemory"
	"github.com/labibilahe-oss/Vaulty-AI-main/internal/pipeline"
	"github.com/labibilahe-oss/Vaulty-AI-main/internal/statementtext"
)

func (c *cli) scanReceiptCmd() *cobra.Command {
	var imagePath string
	cmd := &cobra.Command{
		Use:   "scan-receipt",
		Short: "Extract a transaction from a receipt photo",
		RunE: func(cmd *cobra.Command, args []string) error {
			extractor, err := c.gemini()
			if err != nil {
				return err
			}

			channel := pipeline.NewReceiptChannel(capture.FileDevice{Path: imagePath}, extractor, c.app.Store, pipeline.NewNormalizer())
			out := channel.Scan(c.ctx)
			if err := c.render(cmd.OutOrStdout(), outcomeMarkdown(out, c.app.Store.Profile().Currency)); err != nil {
				return err
			}
			return out.Err
		},
	}
	cmd.Flags().StringVar(&imagePath, "image", "", "Path to a JPEG or PNG receipt image")
	cmd.MarkFlagRequired("image")
	return cmd
}

func (c *cli) importStatementCmd() *cobra.Command {
	var files []string
	cmd := &cobra.Command{
		Use:   "import-statement",
		Short: "Import transactions from bank statement files (text or PDF)",
		RunE: func(cmd *cobra.Command, args []string) error {
			extractor, err := c.gemini()
			if err != nil {
				return err
			}

			// Statements are imported one at a time through the job queue.
			store := inmemory.NewStore()
			queue := inmemory.NewQueue(len(files), store)
			channel := pipeline.NewStatementChannel(extractor, c.app.Store, pipeline.NewNormalizer())
			handler := jobs.NewStatementImportHandler(channel)

			for _, path := range files {
				text, err := c.readStatement(path)
				if err != nil {
					c.log.Error().Err(err).Str("file", path).Msg("Failed to read statement")
					continue
				}
				if err := queue.PublishImportStatement(c.ctx, &jobs.StatementImportJob{Filename: path, Text: text}); err != nil {
					return err
				}
			}

			ctx, cancel := context.WithCancel(c.ctx)
			defer cancel()
			if err := queue.Start(ctx, handler); err != nil {
				return err
			}
			if err := queue.Drain(c.ctx); err != nil {
				return err
			}

			list, err := store.ListJobs(c.ctx, jobs.JobFilter{})
			if err != nil {
				return err
			}
			return c.render(cmd.OutOrStdout(), jobsMarkdown(list))
		},
	}
	cmd.Flags().StringSliceVar(&files, "file", nil, "Statement file or gs:// object to import (repeatable)")
	cmd.MarkFlagRequired("file")
	return cmd
}

// readStatement reads a local file or a gs:// object.
func (c *cli) readStatement(path string) (string, error) {
	if !gcs.IsURI(path) {
		return statementtext.Read(path)
	}
	data, err := gcs.Download(c.ctx, path)
	if err != nil {
		return "", err
	}
	return statementtext.Parse(gcs.FilenameFromURI(path), data)
}
