// Package file provides flat-file implementations of the storage
// interfaces, for runs that need durability without a database.
package file

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"divcap-lab/internal/domain"
	"divcap-lab/internal/storage"
)

// StatMirror persists stat records as one tab-separated line each:
// symbol, variable, day index, value. Every write replaces the whole
// file, so the file always reflects the latest full snapshot.
type StatMirror struct {
	path string
}

// NewStatMirror creates a mirror backed by the given file path. The file
// is created on first write; a missing file loads as empty.
func NewStatMirror(path string) *StatMirror {
	return &StatMirror{path: path}
}

// OverwriteAll atomically replaces the file contents with the given
// records, via a temp file rename.
func (m *StatMirror) OverwriteAll(_ context.Context, records []domain.StatRecord) error {
	var sb strings.Builder
	for _, r := range records {
		fmt.Fprintf(&sb, "%s\t%s\t%d\t%.4f\n", r.Symbol, r.Variable, r.DayIndex, r.Value)
	}

	tmp := m.path + ".tmp"
	if err := os.WriteFile(tmp, []byte(sb.String()), 0o644); err != nil {
		return fmt.Errorf("failed to write stat mirror: %w", err)
	}
	if err := os.Rename(tmp, m.path); err != nil {
		return fmt.Errorf("failed to replace stat mirror: %w", err)
	}
	return nil
}

// LoadAll reads every record from the file. Duplicate keys keep the last
// occurrence, matching the in-memory map they replay into. Blank lines
// are skipped; a malformed line is an error.
func (m *StatMirror) LoadAll(_ context.Context) ([]domain.StatRecord, error) {
	f, err := os.Open(m.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open stat mirror: %w", err)
	}
	defer f.Close()

	type key struct {
		symbol   string
		variable domain.StatVariable
		dayIndex int
	}
	latest := make(map[key]domain.StatRecord)
	var order []key

	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) != 4 {
			return nil, fmt.Errorf("stat mirror line %d: expected 4 fields, got %d: %w",
				lineNo, len(fields), storage.ErrInvalidInput)
		}
		dayIndex, err := strconv.Atoi(fields[2])
		if err != nil {
			return nil, fmt.Errorf("stat mirror line %d: bad day index %q: %w",
				lineNo, fields[2], storage.ErrInvalidInput)
		}
		value, err := strconv.ParseFloat(fields[3], 64)
		if err != nil {
			return nil, fmt.Errorf("stat mirror line %d: bad value %q: %w",
				lineNo, fields[3], storage.ErrInvalidInput)
		}

		rec := domain.StatRecord{
			Symbol:   fields[0],
			Variable: domain.StatVariable(fields[1]),
			DayIndex: dayIndex,
			Value:    value,
		}
		k := key{rec.Symbol, rec.Variable, rec.DayIndex}
		if _, seen := latest[k]; !seen {
			order = append(order, k)
		}
		latest[k] = rec
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read stat mirror: %w", err)
	}

	records := make([]domain.StatRecord, 0, len(order))
	for _, k := range order {
		records = append(records, latest[k])
	}
	return records, nil
}

// Verify interface compliance at compile time.
var _ storage.StatMirror = (*StatMirror)(nil)
