package dblib

import (
	"context"
	"database/sql"
	"fmt"
	"io"
)

// Stream reads query results in batches so a caller can hand rows to the
// display while the query is still running.
type Stream struct {
	rows    *sql.Rows
	columns []Column
	read    int
}

// OpenStream runs query and prepares to read its rows. The caller must Close
// the stream.
func OpenStream(ctx context.Context, db *sql.DB, query string, args ...any) (*Stream, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	columns, err := columnsOf(rows)
	if err != nil {
		rows.Close()
		return nil, fmt.Errorf("failed to read result columns: %w", err)
	}
	debugLog("stream opened: %d columns\n", len(columns))
	return &Stream{rows: rows, columns: columns}, nil
}

// Columns describes the result columns.
func (s *Stream) Columns() []Column {
	return s.columns
}

// Read returns the number of records returned so far.
func (s *Stream) Read() int {
	return s.read
}

// Next reads up to n records. At the end of the result it returns the last
// records, if any, and io.EOF.
func (s *Stream) Next(n int) ([]Record, error) {
	if n <= 0 {
		n = 1
	}
	batch := make([]Record, 0, n)
	for len(batch) < n {
		if !s.rows.Next() {
			if err := s.rows.Err(); err != nil {
				return batch, fmt.Errorf("failed to read row %d: %w", s.read+1, err)
			}
			return batch, io.EOF
		}
		rec := make(Record, len(s.columns))
		dest := make([]any, len(rec))
		for i := range rec {
			dest[i] = &rec[i]
		}
		if err := s.rows.Scan(dest...); err != nil {
			return batch, fmt.Errorf("failed to scan row %d: %w", s.read+1, err)
		}
		for i, v := range rec {
			// Drivers may reuse byte buffers between rows.
			if b, ok := v.([]byte); ok {
				rec[i] = string(b)
			}
		}
		batch = append(batch, rec)
		s.read++
	}
	return batch, nil
}

// Close releases the result set.
func (s *Stream) Close() error {
	return s.rows.Close()
}

// ReadAll drains a stream. Intended for small results and tests.
func ReadAll(s *Stream) ([]Record, error) {
	var all []Record
	for {
		batch, err := s.Next(512)
		all = append(all, batch...)
		if err == io.EOF {
			return all, nil
		}
		if err != nil {
			return all, err
		}
	}
}
