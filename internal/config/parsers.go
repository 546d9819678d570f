// Package config provides configuration loading and parsing for hurlbench.
package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Run-window parse failures. ParseWindow wraps these so callers can branch
// with errors.Is while still seeing the offending input in the message.
var (
	ErrWindowEmpty         = errors.New("duration is empty")
	ErrWindowMissingSuffix = errors.New("duration is missing a unit suffix (s or m)")
	ErrWindowBadNumber     = errors.New("duration must start with a whole number")
	ErrWindowUnknownSuffix = errors.New("unknown duration suffix, expected s (seconds) or m (milliseconds)")
)

// ParseWindow parses the run-window syntax: a whole number followed by a unit
// suffix, where "s" means seconds and "m" means milliseconds. The suffix is
// case-insensitive. "10s" and "250m" are valid; bare numbers are not.
func ParseWindow(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrWindowEmpty
	}

	suffix := s[len(s)-1]
	digits := s[:len(s)-1]
	if suffix >= '0' && suffix <= '9' {
		return 0, fmt.Errorf("%q: %w", s, ErrWindowMissingSuffix)
	}
	if digits == "" {
		return 0, fmt.Errorf("%q: %w", s, ErrWindowBadNumber)
	}

	n, err := strconv.ParseUint(digits, 10, 63)
	if err != nil {
		return 0, fmt.Errorf("%q: %w", s, ErrWindowBadNumber)
	}

	switch suffix {
	case 's', 'S':
		return time.Duration(n) * time.Second, nil
	case 'm', 'M':
		return time.Duration(n) * time.Millisecond, nil
	default:
		return 0, fmt.Errorf("%q: %w", s, ErrWindowUnknownSuffix)
	}
}

// lookupSetting searches for a value in settings using multiple candidate keys.
// It performs case-insensitive matching by also checking lowercase versions.
func lookupSetting(settings map[string]interface{}, candidates ...string) (interface{}, bool) {
	for _, key := range candidates {
		if val, ok := settings[key]; ok {
			return val, true
		}
		lower := strings.ToLower(key)
		if val, ok := settings[lower]; ok {
			return val, true
		}
	}
	return nil, false
}

// asString converts an interface value to a string.
func asString(value interface{}) (string, error) {
	switch v := value.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case fmt.Stringer:
		return v.String(), nil
	case []byte:
		return string(v), nil
	default:
		return fmt.Sprint(v), nil
	}
}

// asInt converts an interface value to an int.
func asInt(value interface{}) (int, error) {
	switch v := value.(type) {
	case nil:
		return 0, nil
	case int:
		return v, nil
	case int32:
		return int(v), nil
	case int64:
		return int(v), nil
	case uint:
		return int(v), nil
	case uint32:
		return int(v), nil
	case uint64:
		return int(v), nil
	case float32:
		return int(v), nil
	case float64:
		return int(v), nil
	case string:
		if strings.TrimSpace(v) == "" {
			return 0, nil
		}
		return strconv.Atoi(strings.TrimSpace(v))
	default:
		return 0, fmt.Errorf("unsupported numeric type %T", value)
	}
}

// asFloat64 converts an interface value to a float64.
func asFloat64(value interface{}) (float64, error) {
	switch v := value.(type) {
	case nil:
		return 0, nil
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case string:
		if strings.TrimSpace(v) == "" {
			return 0, nil
		}
		return strconv.ParseFloat(strings.TrimSpace(v), 64)
	default:
		return 0, fmt.Errorf("unsupported float type %T", value)
	}
}

// asBool converts an interface value to a bool.
func asBool(value interface{}) (bool, error) {
	switch v := value.(type) {
	case nil:
		return false, nil
	case bool:
		return v, nil
	case string:
		if strings.TrimSpace(v) == "" {
			return false, nil
		}
		return strconv.ParseBool(strings.TrimSpace(v))
	default:
		return false, fmt.Errorf("unsupported boolean type %T", value)
	}
}

// asWindow converts a config-file value to a run window. Strings use the
// window syntax; bare numbers are interpreted as seconds.
func asWindow(value interface{}) (time.Duration, error) {
	switch v := value.(type) {
	case nil:
		return 0, nil
	case time.Duration:
		return v, nil
	case string:
		if strings.TrimSpace(v) == "" {
			return 0, nil
		}
		return ParseWindow(v)
	case int, int32, int64, uint, uint32, uint64, float32, float64:
		iv, _ := asInt(v)
		return time.Duration(iv) * time.Second, nil
	default:
		return 0, fmt.Errorf("unsupported duration type %T", value)
	}
}

// asTimeout converts a config-file value to a per-request timeout using the
// standard Go duration syntax (unlike the run window, minutes are useful here).
func asTimeout(value interface{}) (time.Duration, error) {
	switch v := value.(type) {
	case nil:
		return 0, nil
	case time.Duration:
		return v, nil
	case string:
		v = strings.TrimSpace(v)
		if v == "" {
			return 0, nil
		}
		return time.ParseDuration(v)
	case int, int32, int64, uint, uint32, uint64, float32, float64:
		iv, _ := asInt(v)
		return time.Duration(iv) * time.Second, nil
	default:
		return 0, fmt.Errorf("unsupported duration type %T", value)
	}
}

// toStringKeyMap converts a map with various key types to map[string]interface{}.
// Keys are normalized to lowercase.
func toStringKeyMap(value interface{}) (map[string]interface{}, error) {
	result := map[string]interface{}{}
	switch v := value.(type) {
	case map[string]interface{}:
		for key, val := range v {
			result[strings.ToLower(strings.TrimSpace(key))] = val
		}
	case map[interface{}]interface{}:
		for key, val := range v {
			str, err := asString(key)
			if err != nil {
				return nil, err
			}
			result[strings.ToLower(strings.TrimSpace(str))] = val
		}
	default:
		return nil, fmt.Errorf("expected map, got %T", value)
	}
	return result, nil
}
