package backend

import (
	"fmt"
	"strconv"
	"time"
)

// IntOption reads an integer option, accepting the numeric types produced
// by JSON, YAML and flag decoding as well as numeric strings.
func IntOption(opts map[string]any, key string, def int) (int, error) {
	v, ok := opts[key]
	if !ok || v == nil {
		return def, nil
	}
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case uint64:
		return int(n), nil
	case float64:
		if n != float64(int(n)) {
			return 0, fmt.Errorf("option %s: %v is not an integer", key, n)
		}
		return int(n), nil
	case string:
		i, err := strconv.Atoi(n)
		if err != nil {
			return 0, fmt.Errorf("option %s: %w", key, err)
		}
		return i, nil
	}
	return 0, fmt.Errorf("option %s: unsupported type %T", key, v)
}

// BoolOption reads a boolean option.
func BoolOption(opts map[string]any, key string, def bool) (bool, error) {
	v, ok := opts[key]
	if !ok || v == nil {
		return def, nil
	}
	switch b := v.(type) {
	case bool:
		return b, nil
	case string:
		parsed, err := strconv.ParseBool(b)
		if err != nil {
			return false, fmt.Errorf("option %s: %w", key, err)
		}
		return parsed, nil
	}
	return false, fmt.Errorf("option %s: unsupported type %T", key, v)
}

// DurationOption reads a Go duration string option.
func DurationOption(opts map[string]any, key string, def time.Duration) (time.Duration, error) {
	v, ok := opts[key]
	if !ok || v == nil {
		return def, nil
	}
	switch d := v.(type) {
	case time.Duration:
		return d, nil
	case string:
		parsed, err := time.ParseDuration(d)
		if err != nil {
			return 0, fmt.Errorf("option %s: %w", key, err)
		}
		return parsed, nil
	}
	return 0, fmt.Errorf("option %s: unsupported type %T", key, v)
}
