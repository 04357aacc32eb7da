// Package config reads the simulator's key=value settings file. Keys are
// case-insensitive and values may be double-quoted; lines containing '#'
// are treated as comments.
package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Store holds the parsed settings.
type Store struct {
	values map[string]string
}

// Load reads a settings file of KEY=value lines.
func Load(path string) (*Store, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config file: %w", err)
	}
	defer f.Close()

	s := &Store{values: make(map[string]string)}

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.Contains(line, "#") || strings.TrimSpace(line) == "" {
			continue
		}

		key, value, found := strings.Cut(line, "=")
		if !found {
			continue
		}

		key = strings.ToUpper(strings.TrimSpace(key))
		value = strings.TrimSpace(strings.ReplaceAll(value, `"`, ""))
		s.values[key] = value
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	return s, nil
}

// NewFromMap builds a Store directly from a map, for tests and defaults.
func NewFromMap(values map[string]string) *Store {
	s := &Store{values: make(map[string]string, len(values))}
	for k, v := range values {
		s.values[strings.ToUpper(strings.TrimSpace(k))] = v
	}
	return s
}

// Get returns the value for a key, "" when absent. Lookup is
// case-insensitive.
func (s *Store) Get(key string) string {
	return s.values[strings.ToUpper(strings.TrimSpace(key))]
}

// RequireFloat returns the key's value parsed as float64, or an error
// when the key is missing or not numeric. Rules fail construction on
// missing tuning values rather than trading with silent zeros.
func (s *Store) RequireFloat(key string) (float64, error) {
	raw := s.Get(key)
	if raw == "" {
		return 0, fmt.Errorf("config key %s is required", strings.ToUpper(strings.TrimSpace(key)))
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("config key %s: bad float %q: %w", strings.ToUpper(strings.TrimSpace(key)), raw, err)
	}
	return v, nil
}

// RequireInt returns the key's value parsed as int, or an error when the
// key is missing or not numeric.
func (s *Store) RequireInt(key string) (int, error) {
	raw := s.Get(key)
	if raw == "" {
		return 0, fmt.Errorf("config key %s is required", strings.ToUpper(strings.TrimSpace(key)))
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("config key %s: bad int %q: %w", strings.ToUpper(strings.TrimSpace(key)), raw, err)
	}
	return v, nil
}
