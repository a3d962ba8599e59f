package fs

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/bft-labs/scalesim/internal/domain"
	"github.com/bft-labs/scalesim/internal/ports"
)

// CSVSource loads readings from a CSV file whose first row is a header.
// Every data row must hold exactly ChannelCount integer fields.
type CSVSource struct {
	path         string
	channelCount int
}

// NewCSVSource creates a reading source for the CSV file at path.
func NewCSVSource(path string, channelCount int) *CSVSource {
	return &CSVSource{path: path, channelCount: channelCount}
}

// Path returns the file the source reads from.
func (s *CSVSource) Path() string {
	return s.path
}

// Load reads and parses the whole file.
func (s *CSVSource) Load(ctx context.Context) ([]domain.Reading, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	defer f.Close()

	return ParseReadings(ctx, f, s.channelCount)
}

// ParseReadings parses CSV rows from r, skipping the header row.
// Blank lines are ignored; surrounding whitespace in fields is trimmed.
func ParseReadings(ctx context.Context, r io.Reader, channelCount int) ([]domain.Reading, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = true

	var readings []domain.Reading
	header := true
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				return nil, fmt.Errorf("%w: line %d: %v", domain.ErrMalformedReading, perr.Line, perr.Err)
			}
			return nil, fmt.Errorf("read input: %w", err)
		}
		line, _ := cr.FieldPos(0)
		if header {
			header = false
			continue
		}

		reading, err := parseRecord(record, line, channelCount)
		if err != nil {
			return nil, err
		}
		readings = append(readings, reading)
	}
	return readings, nil
}

func parseRecord(record []string, line, channelCount int) (domain.Reading, error) {
	if len(record) != channelCount {
		return domain.Reading{}, fmt.Errorf("%w: line %d has %d fields, want %d",
			domain.ErrMalformedReading, line, len(record), channelCount)
	}
	masses := make([]int, channelCount)
	for i, field := range record {
		m, err := strconv.Atoi(strings.TrimSpace(field))
		if err != nil {
			return domain.Reading{}, fmt.Errorf("%w: line %d field %d: %q is not an integer",
				domain.ErrMalformedReading, line, i+1, field)
		}
		masses[i] = m
	}
	return domain.Reading{Line: line, Masses: masses}, nil
}

var _ ports.ReadingSource = (*CSVSource)(nil)
