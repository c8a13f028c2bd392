// Package ingest prepares raw card policy documents for retrieval by copying
// each one into the chunk directory.
package ingest

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const chunkSuffix = ".chunk.txt"

// ChunkName maps raw/X.ext to X.chunk.txt.
func ChunkName(rawName string) string {
	base := filepath.Base(rawName)
	return strings.TrimSuffix(base, filepath.Ext(base)) + chunkSuffix
}

// Run copies every regular file in rawDir to chunkDir verbatim and returns
// how many were written. Files are processed in name order; a missing or
// empty rawDir yields 0.
func Run(rawDir, chunkDir string, logger *slog.Logger) (int, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(chunkDir, 0o755); err != nil {
		return 0, fmt.Errorf("create chunk dir: %w", err)
	}

	entries, err := os.ReadDir(rawDir)
	if err != nil && !os.IsNotExist(err) {
		return 0, fmt.Errorf("read raw dir: %w", err)
	}

	var files []string
	for _, e := range entries {
		if e.Type().IsRegular() {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)

	if len(files) == 0 {
		logger.Info("No raw policy docs found", "dir", rawDir)
		return 0, nil
	}

	for _, name := range files {
		data, err := os.ReadFile(filepath.Join(rawDir, name))
		if err != nil {
			return 0, fmt.Errorf("read %s: %w", name, err)
		}
		out := filepath.Join(chunkDir, ChunkName(name))
		if err := os.WriteFile(out, data, 0o644); err != nil {
			return 0, fmt.Errorf("write %s: %w", out, err)
		}
		logger.Debug("chunk written", "src", name, "dst", out)
	}

	logger.Info("Ingested documents", "count", len(files), "dir", chunkDir)
	return len(files), nil
}
