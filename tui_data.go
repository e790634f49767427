package main

import (
	"context"
	"fmt"
	"io"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"seltable/internal/dblib"
)

// loadStartMsg announces a read of the relation. A full read replaces the
// rows; a refresh updates them in place by lookup key.
type loadStartMsg struct {
	refresh bool
}

type recordsMsg struct {
	records []dblib.Record
	refresh bool
}

type loadDoneMsg struct {
	read    int
	refresh bool
	err     error
}

// loader streams the relation into the program. It reads once at start, then
// again on request or, with a watch interval and a lookup key, periodically.
type loader struct {
	relation  *dblib.Relation
	batchSize int
	watch     time.Duration
	requests  chan struct{}
}

func newLoader(rel *dblib.Relation, batchSize int, watch time.Duration) *loader {
	return &loader{
		relation:  rel,
		batchSize: batchSize,
		watch:     watch,
		requests:  make(chan struct{}, 1),
	}
}

// request asks for a full read. Requests made while one is pending are
// dropped.
func (l *loader) request() {
	select {
	case l.requests <- struct{}{}:
	default:
	}
}

func (l *loader) run(ctx context.Context, send func(tea.Msg)) {
	l.load(ctx, false, send)

	var tick <-chan time.Time
	if l.watch > 0 && l.relation.HasKey() {
		ticker := time.NewTicker(l.watch)
		defer ticker.Stop()
		tick = ticker.C
	}
	for {
		select {
		case <-ctx.Done():
			return
		case <-l.requests:
			l.load(ctx, false, send)
		case <-tick:
			l.load(ctx, true, send)
		}
	}
}

func (l *loader) load(ctx context.Context, refresh bool, send func(tea.Msg)) {
	if breadcrumbs != nil {
		breadcrumbs.RecordDatabase(fmt.Sprintf("read %s (refresh=%v)", l.relation.Name, refresh))
	}
	send(loadStartMsg{refresh: refresh})

	stream, err := l.relation.Stream(ctx)
	if err != nil {
		send(loadDoneMsg{refresh: refresh, err: err})
		return
	}
	defer stream.Close()

	for {
		batch, err := stream.Next(l.batchSize)
		if len(batch) > 0 {
			send(recordsMsg{records: batch, refresh: refresh})
		}
		if err == io.EOF {
			send(loadDoneMsg{read: stream.Read(), refresh: refresh})
			return
		}
		if err != nil {
			send(loadDoneMsg{read: stream.Read(), refresh: refresh, err: err})
			return
		}
	}
}

func (m *Model) startLoad(msg loadStartMsg) {
	m.loading = true
	m.loadCount = 0
	if msg.refresh {
		m.changed = make(map[int64][]field)
		return
	}
	if m.table.TotalRows() > 0 {
		m.table.Clear()
		m.byKey = make(map[string]int64)
		m.changed = nil
		m.query = ""
		m.scrollTo(0)
	}
}

// addRecords stores a batch. Records whose lookup key is already known
// replace the stored row. A refresh skips rows that did not change and
// remembers which cells of the others changed.
func (m *Model) addRecords(msg recordsMsg) {
	rel := m.relation()
	for _, rec := range msg.records {
		key, ok := rel.KeyOf(rec)
		if !ok {
			m.table.Add(rec)
			continue
		}
		id, known := m.byKey[key]
		if !known {
			m.byKey[key] = m.table.Add(rec)
			continue
		}
		if msg.refresh {
			old, _ := m.table.Get(id)
			cols := changedFields(old, rec)
			if len(cols) == 0 {
				continue
			}
			m.changed[id] = cols
		}
		m.table.Modify(id, func(dblib.Record) dblib.Record { return rec })
	}
	m.loadCount += len(msg.records)
}

func (m *Model) finishLoad(msg loadDoneMsg) {
	m.loading = false
	if msg.err != nil {
		m.setError(fmt.Errorf("failed to read %s: %w", m.relation().Name, msg.err))
		captureError(msg.err)
	}

	m.rebuild()
	switch {
	case msg.err != nil:
	case msg.refresh && len(m.changed) > 0:
		m.setStatus("%d rows changed", len(m.changed))
	case !msg.refresh:
		m.setStatus("Loaded %d rows", msg.read)
	}
	debugLog("load done: %d read, refresh=%v, err=%v\n", msg.read, msg.refresh, msg.err)
}

// changedFields returns the columns whose values differ between two reads of
// the same row.
func changedFields(old, rec dblib.Record) []field {
	if len(old) != len(rec) {
		return nil
	}
	var cols []field
	for i := range rec {
		if dblib.CompareValues(old[i], rec[i]) != 0 {
			cols = append(cols, field(i))
		}
	}
	return cols
}
