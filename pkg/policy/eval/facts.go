package eval

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"mercator-hq/rulescript/pkg/rsl/ast"
)

var (
	// durationPattern matches fact strings such as "30 minutes" or "1.5 hours"
	durationPattern = regexp.MustCompile(`^(?i)(\d+(?:\.\d+)?)\s*(second|seconds|minute|minutes|hour|hours)$`)

	// timePattern matches fact strings such as "09:30" or "17:45:10"
	timePattern = regexp.MustCompile(`^(\d{1,2}):(\d{2})(?::(\d{2}))?$`)
)

var unitDurations = map[string]time.Duration{
	"second": time.Second, "seconds": time.Second,
	"minute": time.Minute, "minutes": time.Minute,
	"hour": time.Hour, "hours": time.Hour,
}

// Facts is an evaluation context: fact name to typed value.
type Facts map[string]ast.Value

// Names returns the fact names in sorted order.
func (f Facts) Names() []string {
	names := make([]string, 0, len(f))
	for name := range f {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// FromMap converts plain Go values into facts.
//
// Supported types are nil, bool, string, the integer and float kinds,
// time.Duration, time.Time (its wall-clock time of day) and ast.TimeOfDay.
// Strings are kept as strings; use ParseValue to interpret them.
func FromMap(values map[string]any) (Facts, error) {
	facts := make(Facts, len(values))
	for name, raw := range values {
		v, err := toValue(raw)
		if err != nil {
			return nil, fmt.Errorf("fact %q: %w", name, err)
		}
		facts[name] = v
	}
	return facts, nil
}

// ParseYAML reads facts from a YAML mapping. String values that look like
// durations ("30 minutes") or times of day ("09:30") are converted to those kinds.
func ParseYAML(data []byte) (Facts, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse facts: %w", err)
	}

	facts := make(Facts, len(raw))
	for name, value := range raw {
		if s, ok := value.(string); ok {
			facts[name] = ParseValue(s)
			continue
		}
		v, err := toValue(value)
		if err != nil {
			return nil, fmt.Errorf("fact %q: %w", name, err)
		}
		facts[name] = v
	}
	return facts, nil
}

// ParseValue interprets a string as a duration, a time of day, or a plain string.
func ParseValue(s string) ast.Value {
	trimmed := strings.TrimSpace(s)

	if m := durationPattern.FindStringSubmatch(trimmed); m != nil {
		n, err := strconv.ParseFloat(m[1], 64)
		if err == nil {
			return ast.DurationValue(time.Duration(n * float64(unitDurations[strings.ToLower(m[2])])))
		}
	}

	if m := timePattern.FindStringSubmatch(trimmed); m != nil {
		h, _ := strconv.Atoi(m[1])
		minute, _ := strconv.Atoi(m[2])
		sec := 0
		if m[3] != "" {
			sec, _ = strconv.Atoi(m[3])
		}
		if h <= 23 && minute <= 59 && sec <= 59 {
			return ast.TimeValue(h, minute, sec)
		}
	}

	return ast.StringValue(s)
}

func toValue(raw any) (ast.Value, error) {
	switch v := raw.(type) {
	case nil:
		return ast.Null, nil
	case ast.Value:
		return v, nil
	case bool:
		return ast.BoolValue(v), nil
	case string:
		return ast.StringValue(v), nil
	case int:
		return ast.NumberValue(float64(v)), nil
	case int32:
		return ast.NumberValue(float64(v)), nil
	case int64:
		return ast.NumberValue(float64(v)), nil
	case uint:
		return ast.NumberValue(float64(v)), nil
	case uint64:
		return ast.NumberValue(float64(v)), nil
	case float32:
		return ast.NumberValue(float64(v)), nil
	case float64:
		return ast.NumberValue(v), nil
	case time.Duration:
		return ast.DurationValue(v), nil
	case time.Time:
		return ast.TimeValue(v.Hour(), v.Minute(), v.Second()), nil
	case ast.TimeOfDay:
		return ast.Value{Kind: ast.ValueKindTime, Time: v}, nil
	default:
		return ast.Null, fmt.Errorf("unsupported fact type %T", raw)
	}
}
