package logs

import (
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/cube2222/octodist/config"
)

var Output *os.File

// InitializeFileLogger redirects the standard logger to a file in the octodist home directory,
// so that log lines don't interleave with query output.
func InitializeFileLogger() {
	path := filepath.Join(config.OctodistCacheDir, "logs.txt")
	if err := os.MkdirAll(config.OctodistCacheDir, 0755); err != nil {
		log.Fatalf("couldn't create ~/.octodist home directory: %s", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		log.Fatalf("couldn't create logs file: %s", err)
	}
	Output = f
	log.SetOutput(Output)
}

// InitializeStderrLogger is used by long-running processes, which keep their logs on stderr.
func InitializeStderrLogger(prefix string) {
	log.SetOutput(os.Stderr)
	log.SetPrefix(prefix)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
}

func CloseLogger() {
	if Output != nil {
		Output.Close()
		log.SetOutput(io.Discard)
	}
}
