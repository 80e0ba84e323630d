package config

import (
	"io"
	"log"
	"os"
	"path/filepath"
)

// SetupLogging configures the standard logger. Debug adds file:line to every
// entry; a non-empty logFile receives a copy of the output. The returned
// closer releases the log file and is never nil.
func SetupLogging(debug bool, logFile string) io.Closer {
	flags := log.Ldate | log.Ltime
	if debug {
		flags |= log.Lshortfile
	}
	log.SetFlags(flags)

	if logFile == "" {
		log.SetOutput(os.Stderr)
		return io.NopCloser(nil)
	}

	if dir := filepath.Dir(logFile); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			log.Printf("Failed to create log directory %s: %v", dir, err)
		}
	}

	f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		log.Printf("Failed to open log file %s: %v", logFile, err)
		return io.NopCloser(nil)
	}

	log.SetOutput(io.MultiWriter(os.Stderr, f))
	return f
}
