package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

var (
	mu      sync.Mutex
	logFile *os.File
)

// Init routes the standard logger to stdout and, when logPath is set, to an
// appended log file as well.
func Init(logPath string) error {
	return initOutputs(logPath, true)
}

// InitQuiet routes the standard logger to the log file only, for commands
// whose stdout is data. With no logPath, log output is discarded.
func InitQuiet(logPath string) error {
	return initOutputs(logPath, false)
}

func initOutputs(logPath string, stdout bool) error {
	mu.Lock()
	defer mu.Unlock()

	if logFile != nil {
		_ = logFile.Close()
		logFile = nil
	}

	var writers []io.Writer
	if stdout {
		writers = append(writers, os.Stdout)
	}

	if logPath != "" {
		if dir := filepath.Dir(logPath); dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return err
			}
		}
		file, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return err
		}
		logFile = file
		writers = append(writers, logFile)
	}
	if len(writers) == 0 {
		writers = append(writers, io.Discard)
	}

	log.SetOutput(io.MultiWriter(writers...))
	return nil
}

func Close() error {
	mu.Lock()
	defer mu.Unlock()
	if logFile == nil {
		return nil
	}
	log.SetOutput(os.Stderr)
	err := logFile.Close()
	logFile = nil
	return err
}

func LogEvent(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	log.Println(msg)
}

// LogWarning logs a recoverable problem.
func LogWarning(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	log.Println("[WARN] " + msg)
}

// LogRecord logs an event about a single result record.
func LogRecord(event, method, dataset, scene, detail string) {
	log.Println(buildRecordMessage(event, method, dataset, scene, detail))
}

func buildRecordMessage(event, method, dataset, scene, detail string) string {
	ev := strings.ToUpper(strings.TrimSpace(event))
	parts := []string{fmt.Sprintf("[%s]", ev)}
	parts = append(parts, fmt.Sprintf("method=%s", orUnknown(method)))
	parts = append(parts, fmt.Sprintf("dataset=%s", orUnknown(dataset)))
	parts = append(parts, fmt.Sprintf("scene=%s", orUnknown(scene)))
	if detail = strings.TrimSpace(detail); detail != "" {
		parts = append(parts, detail)
	}
	return strings.Join(parts, " ")
}

func orUnknown(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return "unknown"
	}
	return value
}
