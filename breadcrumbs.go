package main

import (
	"fmt"
	"sync"
	"time"

	"github.com/getsentry/sentry-go"
)

const (
	breadcrumbLimit = 100
	aggregateWindow = 250 * time.Millisecond
)

// BreadcrumbType is the sentry category of a breadcrumb.
type BreadcrumbType string

const (
	BreadcrumbKeyboard  BreadcrumbType = "keyboard"
	BreadcrumbPointer   BreadcrumbType = "pointer"
	BreadcrumbSelection BreadcrumbType = "selection"
	BreadcrumbSearch    BreadcrumbType = "search"
	BreadcrumbDatabase  BreadcrumbType = "database"
)

// BreadcrumbEntry is one recorded event. Count is above 1 when repeats were
// folded into it.
type BreadcrumbEntry struct {
	Type      BreadcrumbType
	Message   string
	Data      map[string]any
	Timestamp time.Time
	Level     sentry.Level
	Count     int
}

// BreadcrumbBuffer keeps the most recent events in a ring. Drags produce a
// motion event per cell, so identical events arriving close together are
// folded into one entry.
type BreadcrumbBuffer struct {
	mu      sync.Mutex
	entries []BreadcrumbEntry
	next    int
	count   int
	now     func() time.Time
}

func NewBreadcrumbBuffer(maxSize int) *BreadcrumbBuffer {
	return &BreadcrumbBuffer{
		entries: make([]BreadcrumbEntry, maxSize),
		now:     time.Now,
	}
}

func (b *BreadcrumbBuffer) add(typ BreadcrumbType, level sentry.Level, message string, data map[string]any) {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()
	if b.count > 0 {
		last := &b.entries[(b.next-1+len(b.entries))%len(b.entries)]
		if last.Type == typ && last.Message == message && now.Sub(last.Timestamp) <= aggregateWindow {
			last.Count++
			last.Timestamp = now
			return
		}
	}

	b.entries[b.next] = BreadcrumbEntry{
		Type:      typ,
		Message:   message,
		Data:      data,
		Timestamp: now,
		Level:     level,
		Count:     1,
	}
	b.next = (b.next + 1) % len(b.entries)
	if b.count < len(b.entries) {
		b.count++
	}
}

func (b *BreadcrumbBuffer) RecordKeyboard(key string) {
	b.add(BreadcrumbKeyboard, sentry.LevelDebug, "Key: "+key, map[string]any{"key": key})
}

func (b *BreadcrumbBuffer) RecordPointer(action string, row int64, col int) {
	b.add(BreadcrumbPointer, sentry.LevelDebug, "Pointer: "+action, map[string]any{"row": row, "column": col})
}

// RecordSelection records the size of the selection after a change.
func (b *BreadcrumbBuffer) RecordSelection(action string, cells int) {
	b.add(BreadcrumbSelection, sentry.LevelInfo, "Selection: "+action, map[string]any{"cells": cells})
}

func (b *BreadcrumbBuffer) RecordSearch(query string, matches int) {
	b.add(BreadcrumbSearch, sentry.LevelInfo, fmt.Sprintf("Search: %d matches", matches),
		map[string]any{"query_length": len(query), "matches": matches})
}

func (b *BreadcrumbBuffer) RecordDatabase(operation string) {
	b.add(BreadcrumbDatabase, sentry.LevelInfo, "DB: "+operation, map[string]any{"operation": operation})
}

// snapshot returns the buffered entries oldest first.
func (b *BreadcrumbBuffer) snapshot() []BreadcrumbEntry {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]BreadcrumbEntry, 0, b.count)
	start := (b.next - b.count + len(b.entries)) % len(b.entries)
	for i := 0; i < b.count; i++ {
		out = append(out, b.entries[(start+i)%len(b.entries)])
	}
	return out
}

// Flush moves the buffered entries to the current sentry scope and empties
// the buffer.
func (b *BreadcrumbBuffer) Flush() {
	entries := b.snapshot()
	if len(entries) == 0 {
		return
	}

	sentry.ConfigureScope(func(scope *sentry.Scope) {
		for _, e := range entries {
			message, data := e.Message, e.Data
			if e.Count > 1 {
				message = fmt.Sprintf("%s (x%d)", e.Message, e.Count)
				data = make(map[string]any, len(e.Data)+1)
				for k, v := range e.Data {
					data[k] = v
				}
				data["count"] = e.Count
			}
			scope.AddBreadcrumb(&sentry.Breadcrumb{
				Category:  string(e.Type),
				Message:   message,
				Data:      data,
				Timestamp: e.Timestamp,
				Level:     e.Level,
			}, breadcrumbLimit)
		}
	})

	b.mu.Lock()
	b.next, b.count = 0, 0
	b.mu.Unlock()
}

// breadcrumbs is nil unless telemetry is enabled.
var breadcrumbs *BreadcrumbBuffer

func InitBreadcrumbs(maxSize int) {
	breadcrumbs = NewBreadcrumbBuffer(maxSize)
}
