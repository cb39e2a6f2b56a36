package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fundsight/docintel/internal/export"
	"github.com/fundsight/docintel/internal/model"
	"github.com/fundsight/docintel/internal/store"
)

var (
	exportOut     string
	exportDocType string
	exportLimit   int
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export stored extraction results to an XLSX workbook",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		docs, err := env.Store.ListDocuments(ctx, store.DocumentFilter{
			DocType: model.DocumentType(exportDocType),
			Limit:   exportLimit,
		})
		if err != nil {
			return err
		}

		if err := export.WriteXLSX(exportOut, docs); err != nil {
			return err
		}

		zap.L().Info("export complete",
			zap.String("path", exportOut),
			zap.Int("documents", len(docs)))
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportOut, "out", "docintel.xlsx", "output workbook path")
	exportCmd.Flags().StringVar(&exportDocType, "doc-type", "", "only export documents of this type")
	exportCmd.Flags().IntVar(&exportLimit, "limit", 1000, "max documents to export")
	rootCmd.AddCommand(exportCmd)
}
