package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/ZaguanLabs/cliptl"
)

// ExportVersion is the current export file format version.
const ExportVersion = "1.0"

// ExportFormat represents the JSON structure for translation memory export/import.
type ExportFormat struct {
	Version    string                     `json:"version"`
	ExportedAt string                     `json:"exported_at"`
	Entries    []cliptl.TranslationRecord `json:"entries"`
	Metadata   map[string]string          `json:"metadata,omitempty"`
}

// Exporter writes the translation memory history as JSON.
type Exporter struct {
	memory *Memory
	now    func() time.Time
}

// NewExporter creates a new exporter.
func NewExporter(memory *Memory) *Exporter {
	return &Exporter{memory: memory, now: time.Now}
}

// Export writes every record, newest first, to w.
func (e *Exporter) Export(ctx context.Context, w io.Writer, metadata map[string]string) (int, error) {
	records, err := e.memory.Recent(ctx, 0)
	if err != nil {
		return 0, fmt.Errorf("reading history: %w", err)
	}

	export := ExportFormat{
		Version:    ExportVersion,
		ExportedAt: e.now().UTC().Format(time.RFC3339),
		Entries:    records,
		Metadata:   metadata,
	}
	if export.Entries == nil {
		export.Entries = []cliptl.TranslationRecord{}
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(export); err != nil {
		return 0, fmt.Errorf("encoding JSON: %w", err)
	}

	return len(records), nil
}

// ExportToFile exports the history to a file.
// The path is provided by the caller and is intentionally user-controlled.
func (e *Exporter) ExportToFile(ctx context.Context, path string, metadata map[string]string) (int, error) {
	f, err := os.Create(path) // #nosec G304 - path is intentionally user-provided
	if err != nil {
		return 0, fmt.Errorf("creating file: %w", err)
	}
	defer f.Close()

	return e.Export(ctx, f, metadata)
}

// Importer loads exported records back into a translation memory.
type Importer struct {
	memory *Memory
}

// NewImporter creates a new importer.
func NewImporter(memory *Memory) *Importer {
	return &Importer{memory: memory}
}

// Import reads records from r and restores them. Records with empty text or
// languages are counted as failed and skipped.
func (i *Importer) Import(ctx context.Context, r io.Reader) (*ImportResult, error) {
	var export ExportFormat
	if err := json.NewDecoder(r).Decode(&export); err != nil {
		return nil, fmt.Errorf("decoding JSON: %w", err)
	}
	if export.Version != "" && !strings.HasPrefix(export.Version, "1.") {
		return nil, fmt.Errorf("unsupported export version %q", export.Version)
	}

	result := &ImportResult{
		Version:  export.Version,
		Metadata: export.Metadata,
	}

	for _, rec := range export.Entries {
		if strings.TrimSpace(rec.SourceText) == "" || rec.TargetText == "" || rec.SourceLang == "" || rec.TargetLang == "" {
			result.Failed++
			continue
		}
		if err := i.memory.Restore(ctx, rec); err != nil {
			result.Failed++
			continue
		}
		result.Imported++
	}

	return result, nil
}

// ImportFromFile imports records from a file.
// The path is provided by the caller and is intentionally user-controlled.
func (i *Importer) ImportFromFile(ctx context.Context, path string) (*ImportResult, error) {
	f, err := os.Open(path) // #nosec G304 - path is intentionally user-provided
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	return i.Import(ctx, f)
}

// ImportResult contains statistics about the import operation.
type ImportResult struct {
	Version  string
	Metadata map[string]string
	Imported int
	Failed   int
}
