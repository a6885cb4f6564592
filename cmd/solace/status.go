package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/hyperjump/solace/internal/cli"
	"github.com/hyperjump/solace/internal/storage"
)

// statusReport is what `solace status` prints.
type statusReport struct {
	*storage.Stats
	Embedding      string `json:"embedding_provider"`
	CacheBackend   string `json:"cache_backend"`
	DiskUsageBytes *int64 `json:"disk_usage_bytes,omitempty"`
}

func writeStatus(w io.Writer, s *statusReport, format cli.OutputFormat) error {
	if format == cli.OutputJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(s)
	}
	fmt.Fprintf(w, "Backend:     %s\n", s.Backend)
	fmt.Fprintf(w, "Fragments:   %d\n", s.Fragments)
	fmt.Fprintf(w, "Users:       %d\n", s.Users)
	fmt.Fprintf(w, "Embedding:   %s\n", s.Embedding)
	fmt.Fprintf(w, "Marker cache: %s\n", s.CacheBackend)
	if s.DiskUsageBytes != nil {
		fmt.Fprintf(w, "Disk usage:  %s\n", formatBytes(*s.DiskUsageBytes))
	}
	return nil
}

func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
