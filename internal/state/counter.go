package state

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// ReadCounter reads the day counter from its file, or returns 0 when
// the file does not exist yet. The counter is incremented externally
// between runs; the posting pipeline only reads it.
func ReadCounter(path string) (int, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("reading counter file: %w", err)
	}

	count, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("parsing counter file %s: %w", path, err)
	}
	if count < 0 {
		return 0, fmt.Errorf("counter file %s holds negative value %d", path, count)
	}
	return count, nil
}

// WriteCounter persists the counter value. Only the scheduler daemon
// calls this; one-shot runs leave the counter untouched.
func WriteCounter(path string, count int) error {
	if err := os.WriteFile(path, []byte(strconv.Itoa(count)), 0644); err != nil {
		return fmt.Errorf("writing counter file: %w", err)
	}
	return nil
}

// ReadPrompt returns the entire contents of the prompt file. A missing
// file is a recoverable condition yielding a sentinel string rather
// than a hard failure.
func ReadPrompt(path string) string {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return "prompt file not found."
	}
	if err != nil {
		return fmt.Sprintf("An error occurred: %v", err)
	}
	return string(data)
}
