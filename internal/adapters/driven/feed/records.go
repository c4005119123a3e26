package feed

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/custodia-labs/citescope/internal/core/domain"
)

// maxLine bounds a single JSONL record.
const maxLine = 1 << 20

// ReadRecords decodes JSON Lines from r. Blank lines are skipped.
// A line that is not valid JSON fails the whole read with its line number;
// field-level problems are left for the normaliser to report.
func ReadRecords(r io.Reader) ([]domain.RawCitation, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLine)

	var records []domain.RawCitation
	line := 0
	for scanner.Scan() {
		line++
		raw := bytes.TrimSpace(scanner.Bytes())
		if len(raw) == 0 {
			continue
		}
		var rec domain.RawCitation
		if err := json.Unmarshal(raw, &rec); err != nil {
			return nil, fmt.Errorf("line %d: %w: %w", line, domain.ErrInvalidInput, err)
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading records: %w", err)
	}
	return records, nil
}

// ReadRecordsFile reads a JSON Lines file. "-" reads standard input.
func ReadRecordsFile(path string) ([]domain.RawCitation, error) {
	if path == "-" {
		return ReadRecords(os.Stdin)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	records, err := ReadRecords(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return records, nil
}

// WriteRecords encodes records as JSON Lines.
func WriteRecords(w io.Writer, records []domain.RawCitation) error {
	enc := json.NewEncoder(w)
	for i := range records {
		if err := enc.Encode(records[i]); err != nil {
			return err
		}
	}
	return nil
}
