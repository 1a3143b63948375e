package deskforge

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/klauspost/pgzip"
)

// The run log is the only artifact a run leaves behind besides the installed
// packages. One file, truncated at the start of each run; the previous run is
// kept next to it as <log>.1.gz.
var (
	runLogMu   sync.Mutex
	runLogFile *os.File
)

func logPath() string {
	if p := os.Getenv("DESKFORGE_LOG"); p != "" {
		return p
	}
	return LogFile
}

// openRunLog rotates the previous run log away and starts a fresh one.
func openRunLog() error {
	path := logPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	if err := rotateRunLog(path); err != nil {
		// A failed rotation only loses the previous run's log.
		fmt.Fprintf(os.Stderr, "Warning: log rotation failed: %v\n", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open run log: %w", err)
	}
	runLogMu.Lock()
	runLogFile = f
	runLogMu.Unlock()
	return nil
}

// rotateRunLog compresses an existing log to <path>.1.gz and removes it.
func rotateRunLog(path string) error {
	src, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer src.Close()

	dst, err := os.Create(path + ".1.gz")
	if err != nil {
		return err
	}
	gz := pgzip.NewWriter(dst)
	if _, err := io.Copy(gz, src); err != nil {
		gz.Close()
		dst.Close()
		return err
	}
	if err := gz.Close(); err != nil {
		dst.Close()
		return err
	}
	if err := dst.Close(); err != nil {
		return err
	}
	return os.Remove(path)
}

func closeRunLog() {
	runLogMu.Lock()
	defer runLogMu.Unlock()
	if runLogFile != nil {
		runLogFile.Close()
		runLogFile = nil
	}
}

// logLine appends one timestamped line to the run log. Console mirroring is
// done by the callers so they control styling.
func logLine(level, format string, a ...any) {
	runLogMu.Lock()
	defer runLogMu.Unlock()
	if runLogFile == nil {
		return
	}
	msg := fmt.Sprintf(format, a...)
	fmt.Fprintf(runLogFile, "%s [%s] %s\n", time.Now().Format("2006-01-02 15:04:05"), level, msg)
}

// logInfof logs and prints an informational message.
func logInfof(format string, a ...any) {
	logLine("INFO", format, a...)
	colArrow.Print("-> ")
	colSuccess.Printf(format+"\n", a...)
}

// logWarnf logs and prints a warning. Warnings never abort the run.
func logWarnf(format string, a ...any) {
	logLine("WARN", format, a...)
	colArrow.Print("-> ")
	colWarn.Printf(format+"\n", a...)
}

// logErrorf logs and prints a non-fatal error.
func logErrorf(format string, a ...any) {
	logLine("ERROR", format, a...)
	colArrow.Print("-> ")
	colError.Printf(format+"\n", a...)
}

// logFatalf logs a fatal condition. The caller is responsible for exiting.
func logFatalf(format string, a ...any) {
	logLine("FATAL", format, a...)
	colArrow.Print("-> ")
	colError.Printf(format+"\n", a...)
}
