package main

import (
	"os/signal"
	"sync/atomic"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/fundsight/docintel/internal/model"
)

var ingestConcurrency int

var ingestCmd = &cobra.Command{
	Use:   "ingest <file>...",
	Short: "Ingest documents: classify, extract, and store",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		zap.L().Info("ingesting documents",
			zap.Int("files", len(args)),
			zap.Int("concurrency", ingestConcurrency))

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(ingestConcurrency)

		var ingested, failed atomic.Int64

		for _, path := range args {
			path := path
			g.Go(func() error {
				doc, err := env.Ingest.IngestFile(gctx, path)
				if err != nil {
					failed.Add(1)
					zap.L().Error("ingest failed", zap.String("file", path), zap.Error(err))
					return nil // keep going on individual failure
				}
				if doc.Status == model.StatusFailed {
					failed.Add(1)
					return nil
				}
				ingested.Add(1)
				return nil
			})
		}

		if err := g.Wait(); err != nil {
			return eris.Wrap(err, "ingest batch")
		}

		zap.L().Info("ingest complete",
			zap.Int64("ingested", ingested.Load()),
			zap.Int64("failed", failed.Load()))
		return nil
	},
}

func init() {
	ingestCmd.Flags().IntVar(&ingestConcurrency, "concurrency", 4, "max documents processed in parallel")
	rootCmd.AddCommand(ingestCmd)
}
