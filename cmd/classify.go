package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/fundsight/docintel/internal/pdftext"
)

var classifyExtract bool

var classifyCmd = &cobra.Command{
	Use:   "classify <file>",
	Short: "Classify a document without storing it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		path := args[0]
		var text string
		if strings.EqualFold(filepath.Ext(path), ".pdf") {
			text, err = pdftext.Extract(path)
		} else {
			var data []byte
			data, err = os.ReadFile(path)
			text = string(data)
		}
		if err != nil {
			return eris.Wrapf(err, "read %s", path)
		}

		docType := env.Classifier.Classify(ctx, text)
		if !classifyExtract {
			fmt.Println(docType)
			return nil
		}

		result := env.Extractor.Extract(ctx, docType, text)
		out, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return eris.Wrap(err, "marshal result")
		}
		fmt.Println(string(out))
		return nil
	},
}

func init() {
	classifyCmd.Flags().BoolVar(&classifyExtract, "extract", false, "also run field extraction and print the result")
	rootCmd.AddCommand(classifyCmd)
}
