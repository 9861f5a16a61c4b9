package main

import (
	"bytes"
	"context"
	"crypto/sha256"
	"flag"
	"fmt"

	"github.com/labibilahe-oss/Vaulty-AI-main/internal/app"
	"github.com/labibilahe-oss/Vaulty-AI-main/internal/ledger"
	"github.com/labibilahe-oss/Vaulty-AI-main/internal/logger"
)

var (
	from   = flag.String("from", "", "Source backend: dir, file://dir, gs://bucket/prefix or bq://project/dataset (required)")
	to     = flag.String("to", "", "Destination backend, same forms as -from (required)")
	dryRun = flag.Bool("dry-run", false, "List the slots that would be copied without writing")
)

func main() {
	flag.Parse()

	log := logger.New()
	ctx := logger.WithContext(context.Background(), log)

	// Validate required flags
	if *from == "" || *to == "" {
		log.Fatal().Msg("Error: -from and -to are required")
	}

	copied, err := migrate(ctx, *from, *to, *dryRun)
	if err != nil {
		log.Fatal().Err(err).Msg("Migration failed")
	}

	log.Info().Strs("slots", copied).Bool("dry_run", *dryRun).Msg("Migration completed")
}

// migrate copies every ledger slot from one backend to another and verifies
// the copies by checksum.
func migrate(ctx context.Context, fromURI, toURI string, dryRun bool) ([]string, error) {
	log := logger.FromContext(ctx)

	srcCfg, err := app.ParseBackendURI(fromURI)
	if err != nil {
		return nil, fmt.Errorf("migrate: -from: %w", err)
	}
	dstCfg, err := app.ParseBackendURI(toURI)
	if err != nil {
		return nil, fmt.Errorf("migrate: -to: %w", err)
	}
	if srcCfg == dstCfg {
		return nil, fmt.Errorf("migrate: source and destination are the same backend")
	}

	src, closeSrc, err := app.OpenBackend(ctx, srcCfg)
	if err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	defer closeSrc()

	if dryRun {
		var present []string
		for _, key := range ledger.Keys {
			data, err := src.Load(ctx, key)
			if err != nil {
				continue
			}
			log.Info().Str("slot", key).Str("checksum", checksum(data)).Msg("[DRY RUN] Would copy slot")
			present = append(present, key)
		}
		return present, nil
	}

	dst, closeDst, err := app.OpenBackend(ctx, dstCfg)
	if err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	defer closeDst()

	copied, err := ledger.CopySlots(ctx, src, dst)
	if err != nil {
		return copied, fmt.Errorf("migrate: %w", err)
	}

	for _, key := range copied {
		want, err := src.Load(ctx, key)
		if err != nil {
			return copied, fmt.Errorf("migrate: reload source %s: %w", key, err)
		}
		got, err := dst.Load(ctx, key)
		if err != nil {
			return copied, fmt.Errorf("migrate: reload destination %s: %w", key, err)
		}
		if !bytes.Equal(want, got) {
			return copied, fmt.Errorf("migrate: checksum mismatch for %s: %s != %s", key, checksum(want), checksum(got))
		}
		log.Info().Str("slot", key).Str("checksum", checksum(got)).Msg("Copied slot")
	}

	return copied, nil
}

func checksum(data []byte) string {
	return fmt.Sprintf("%x", sha256.Sum256(data))
}
