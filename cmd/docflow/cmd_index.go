package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var indexPath string

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Index a folder of documents into the vector store",
	RunE:  runIndex,
}

func init() {
	indexCmd.Flags().StringVarP(&indexPath, "path", "p", "./data", "path to folder to index")
}

func runIndex(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	a, err := newApp(cmd.Context(), cfg, true)
	if err != nil {
		return err
	}
	defer a.Close()

	a.logger.Info("starting indexing", zap.String("path", indexPath))
	results, err := a.indexer.IndexDir(cmd.Context(), indexPath)
	chunks := 0
	for _, r := range results {
		chunks += r.Chunks
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Indexed %d files (%d chunks).\n", len(results), chunks)
	if err != nil {
		a.logger.Warn("some files were skipped", zap.Error(err))
	}
	return nil
}
