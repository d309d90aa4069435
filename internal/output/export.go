package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/alvera-ai/interoperability-template-generator/internal/store"
)

// Format represents the output format type
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

// ExportResults exports stored call results to the specified format
func ExportResults(results []store.CallResult, format Format, filePath string) error {
	w, closer, err := getWriter(filePath)
	if err != nil {
		return err
	}
	if closer != nil {
		defer closer.Close()
	}

	switch format {
	case FormatJSON:
		return exportResultsJSON(w, results)
	case FormatCSV:
		return exportResultsCSV(w, results)
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

// getWriter returns an io.Writer for output (stdout or file)
func getWriter(filePath string) (io.Writer, io.Closer, error) {
	if filePath == "" {
		return os.Stdout, nil, nil
	}

	f, err := os.Create(filePath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, f, nil
}

// exportResultsJSON exports call results as JSON
func exportResultsJSON(w io.Writer, results []store.CallResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(results)
}

// exportResultsCSV exports call results as CSV
func exportResultsCSV(w io.Writer, results []store.CallResult) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	// Write header
	header := []string{
		"id", "created_at", "method", "endpoint", "url", "status_code",
		"duration_ms", "user_prompt", "schema_used",
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	// Write rows
	for _, r := range results {
		row := []string{
			strconv.FormatUint(uint64(r.ID), 10),
			r.CreatedAt.Format("2006-01-02 15:04:05"),
			r.Method,
			r.Endpoint,
			r.URL,
			strconv.Itoa(r.StatusCode),
			strconv.FormatInt(r.DurationMS, 10),
			r.UserPrompt,
			r.SchemaUsed,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	return cw.Error()
}

// ParseFormat parses a string into a Format, returning error if invalid
func ParseFormat(s string) (Format, error) {
	switch s {
	case "json":
		return FormatJSON, nil
	case "csv":
		return FormatCSV, nil
	default:
		return "", fmt.Errorf("invalid format '%s': must be 'json' or 'csv'", s)
	}
}
