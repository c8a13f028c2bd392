package commands

import (
	"fmt"

	"bestcard/internal/ingest"

	"github.com/spf13/cobra"
)

func newIngestCommand(e *env) *cobra.Command {
	var rawDir, chunkDir string

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Copy raw policy documents into the chunk directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if rawDir == "" {
				rawDir = e.cfg.RAGRawDir
			}
			if chunkDir == "" {
				chunkDir = e.cfg.RAGChunkDir
			}
			n, err := ingest.Run(rawDir, chunkDir, e.logger)
			if err != nil {
				return err
			}
			if n == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "No raw policy docs found in %s\n", rawDir)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Ingested %d document(s) into %s\n", n, chunkDir)
			return nil
		},
	}

	cmd.Flags().StringVar(&rawDir, "raw-dir", "", "raw documents directory (default RAG_RAW_DIR)")
	cmd.Flags().StringVar(&chunkDir, "chunk-dir", "", "chunk output directory (default RAG_CHUNK_DIR)")
	return cmd
}
