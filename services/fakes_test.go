package services

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"reception-dedup/storage"
)

// fakeRows liefert feste Zeilen in Spaltenreihenfolge.
type fakeRows struct {
	cols   []string
	data   [][]any
	pos    int
	err    error
	closed bool
}

func newFakeRows(cols []string, data ...[]any) *fakeRows {
	return &fakeRows{cols: cols, data: data, pos: -1}
}

func (r *fakeRows) Columns() ([]string, error) { return r.cols, nil }

func (r *fakeRows) Next() bool {
	r.pos++
	return r.pos < len(r.data)
}

func (r *fakeRows) Scan(dest ...any) error {
	row := r.data[r.pos]
	if len(dest) != len(row) {
		return fmt.Errorf("expected %d destinations, got %d", len(row), len(dest))
	}
	for i, d := range dest {
		v := row[i]
		switch t := d.(type) {
		case sql.Scanner:
			if err := t.Scan(v); err != nil {
				return err
			}
		case *int64:
			n, ok := v.(int64)
			if !ok {
				return fmt.Errorf("column %d: cannot scan %T into int64", i, v)
			}
			*t = n
		case *string:
			s, ok := v.(string)
			if !ok {
				return fmt.Errorf("column %d: cannot scan %T into string", i, v)
			}
			*t = s
		case *any:
			*t = v
		default:
			return fmt.Errorf("unsupported destination %T", d)
		}
	}
	return nil
}

func (r *fakeRows) Err() error { return r.err }

func (r *fakeRows) Close() error {
	r.closed = true
	return nil
}

type storeCall struct {
	Query string
	Args  []any
}

// fakeStore zeichnet alle Aufrufe auf und delegiert an die gesetzten Funktionen.
type fakeStore struct {
	mu      sync.Mutex
	queries []storeCall
	execs   []storeCall

	queryFn func(query string, args []any) (storage.Rows, error)
	execFn  func(query string, args []any) (int64, error)
	pingErr error
}

func (s *fakeStore) Query(_ context.Context, query string, args ...any) (storage.Rows, error) {
	s.mu.Lock()
	s.queries = append(s.queries, storeCall{Query: query, Args: args})
	s.mu.Unlock()
	if s.queryFn == nil {
		return nil, fmt.Errorf("unexpected query")
	}
	return s.queryFn(query, args)
}

func (s *fakeStore) Exec(_ context.Context, query string, args ...any) (int64, error) {
	s.mu.Lock()
	s.execs = append(s.execs, storeCall{Query: query, Args: args})
	s.mu.Unlock()
	if s.execFn == nil {
		return 0, fmt.Errorf("unexpected exec")
	}
	return s.execFn(query, args)
}

func (s *fakeStore) Ping(context.Context) error { return s.pingErr }

// countRows liefert eine einzelne COUNT-Zeile.
func countRows(n int64) *fakeRows {
	return newFakeRows([]string{"count"}, []any{n})
}

func allColumns(withDuplicates bool) []string {
	cols := append([]string{}, recordColumns...)
	if withDuplicates {
		cols = append(cols, duplicateColumns...)
	}
	return cols
}

// recordRow baut eine Ergebniszeile in der Reihenfolge von allColumns.
func recordRow(id int64, content any, status string, at time.Time) []any {
	return []any{
		id, content, status, "", "",
		"受付", nil, "製品A",
		nil, at, at,
	}
}

// duplicateRow ergänzt recordRow um die Partitionsspalten.
func duplicateRow(id int64, content any, status string, at time.Time, count, partition int64, key string) []any {
	return append(recordRow(id, content, status, at), count, key, partition)
}

type oplogEntry struct {
	Action  string
	IDs     []int64
	Success bool
	Count   int64
	Err     error
}

type fakeOpLog struct {
	mu      sync.Mutex
	entries []oplogEntry
}

func (l *fakeOpLog) LogDelete(ids []int64, success bool, count int64, err error) {
	l.add("DELETE", ids, success, count, err)
}

func (l *fakeOpLog) LogRestore(ids []int64, success bool, count int64, err error) {
	l.add("RESTORE", ids, success, count, err)
}

func (l *fakeOpLog) add(action string, ids []int64, success bool, count int64, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, oplogEntry{Action: action, IDs: ids, Success: success, Count: count, Err: err})
}
