package util

import (
	"os"
	"strings"
)

// GetEnvironmentVariables returns the process environment as a map. Entries without a
// name are skipped.
func GetEnvironmentVariables() map[string]string {
	variables := make(map[string]string, len(os.Environ()))

	for _, entry := range os.Environ() {
		name, value, found := strings.Cut(entry, "=")
		if !found || name == "" {
			continue
		}

		variables[name] = value
	}

	return variables
}
