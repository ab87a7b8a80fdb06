// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads API credentials from a directory of plain-text
// files. Each file is one secret: the filename is the key and the trimmed
// contents are the value.
//
// Expected key files: ads-api-token, openweather-api-key. GitHub access
// goes through the gh CLI, which manages its own credentials.
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

var envRef = regexp.MustCompile(`^\$\{([^}]+)\}$`)

// Load reads all files in dir and returns a map of filename to trimmed
// contents. A missing directory is not an error; Load returns an empty map.
// Unreadable files produce a warning on stderr but do not abort.
//
// A value of the form ${VAR} is resolved from the environment. If the
// variable is unset the secret is dropped, which downstream availability
// checks treat as "not configured" rather than as a literal token.
func Load(dir string) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	secrets := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not read secret %s: %v\n", entry.Name(), err)
			continue
		}

		value := Expand(strings.TrimSpace(string(data)))
		if value != "" {
			secrets[entry.Name()] = value
		}
	}

	return secrets, nil
}

// Expand resolves a ${VAR} environment reference. Non-reference values are
// returned unchanged; an unset variable resolves to the empty string.
func Expand(value string) string {
	m := envRef.FindStringSubmatch(value)
	if m == nil {
		return value
	}
	return os.Getenv(m[1])
}
