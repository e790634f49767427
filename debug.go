//go:build debug

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

var (
	debugFile *os.File
	debugMu   sync.Mutex
)

func init() {
	var err error
	debugFile, err = os.OpenFile(filepath.Join(os.TempDir(), "seltable.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open debug log file: %v\n", err)
		os.Exit(1)
	}
}

// debugLog writes to a log file because the terminal belongs to the TUI
func debugLog(format string, args ...any) {
	debugMu.Lock()
	defer debugMu.Unlock()

	timestamp := time.Now().Format("15:04:05.000")
	fmt.Fprintf(debugFile, "[%s] "+format, append([]any{timestamp}, args...)...)
}
