package config

import (
	"fmt"
	"os"
	"strings"
)

// UpdateEnvFile updates the given KEY=value pair in the env file,
// appending the key when it is not present. The whole file is
// rewritten on each update. Concurrent runs are not supported; there
// is no file locking.
func UpdateEnvFile(path, key, value string) error {
	var lines []string
	keyFound := false

	data, err := os.ReadFile(path)
	if err == nil && len(data) > 0 {
		for _, line := range strings.Split(strings.TrimRight(string(data), "\n"), "\n") {
			if strings.HasPrefix(line, key+"=") {
				lines = append(lines, fmt.Sprintf("%s=%s", key, value))
				keyFound = true
			} else {
				lines = append(lines, line)
			}
		}
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("reading env file: %w", err)
	}

	if !keyFound {
		lines = append(lines, fmt.Sprintf("%s=%s", key, value))
	}

	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0600); err != nil {
		return fmt.Errorf("writing env file: %w", err)
	}
	return nil
}
