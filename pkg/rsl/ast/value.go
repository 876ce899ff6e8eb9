package ast

import (
	"fmt"
	"strconv"
	"time"
)

// ValueKind represents the type of a runtime or literal value.
// The rule language has no automatic coercion between kinds.
type ValueKind string

const (
	ValueKindNull     ValueKind = "null"
	ValueKindNumber   ValueKind = "number"
	ValueKindString   ValueKind = "string"
	ValueKindBoolean  ValueKind = "boolean"
	ValueKindTime     ValueKind = "time"     // Time of day (hour, minute, second)
	ValueKindDuration ValueKind = "duration" // Normalized to seconds
)

// TimeOfDay is a wall-clock time without a date.
type TimeOfDay struct {
	Hour   int
	Minute int
	Second int
}

// Seconds returns the number of seconds since midnight.
func (t TimeOfDay) Seconds() int {
	return t.Hour*3600 + t.Minute*60 + t.Second
}

// Compare compares two times as (hour, minute, second) tuples.
// It returns -1, 0 or 1.
func (t TimeOfDay) Compare(other TimeOfDay) int {
	switch {
	case t.Hour != other.Hour:
		return cmpInt(t.Hour, other.Hour)
	case t.Minute != other.Minute:
		return cmpInt(t.Minute, other.Minute)
	default:
		return cmpInt(t.Second, other.Second)
	}
}

// String formats the time as HH:MM:SS.
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", t.Hour, t.Minute, t.Second)
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// Value is a typed value: a literal in a script or a fact in an evaluation context.
// Only the field matching Kind is meaningful.
type Value struct {
	Kind     ValueKind
	Number   float64
	Str      string
	Bool     bool
	Time     TimeOfDay
	Duration time.Duration
}

// Null is the null value.
var Null = Value{Kind: ValueKindNull}

// NumberValue creates a number value.
func NumberValue(n float64) Value {
	return Value{Kind: ValueKindNumber, Number: n}
}

// StringValue creates a string value.
func StringValue(s string) Value {
	return Value{Kind: ValueKindString, Str: s}
}

// BoolValue creates a boolean value.
func BoolValue(b bool) Value {
	return Value{Kind: ValueKindBoolean, Bool: b}
}

// TimeValue creates a time-of-day value.
func TimeValue(hour, minute, second int) Value {
	return Value{Kind: ValueKindTime, Time: TimeOfDay{Hour: hour, Minute: minute, Second: second}}
}

// DurationValue creates a duration value truncated to whole seconds.
func DurationValue(d time.Duration) Value {
	return Value{Kind: ValueKindDuration, Duration: d.Truncate(time.Second)}
}

// IsNull returns true if the value is null (including the zero Value).
func (v Value) IsNull() bool {
	return v.Kind == ValueKindNull || v.Kind == ""
}

// Interface returns the value as a plain Go value for JSON output.
func (v Value) Interface() interface{} {
	switch v.Kind {
	case ValueKindNumber:
		return v.Number
	case ValueKindString:
		return v.Str
	case ValueKindBoolean:
		return v.Bool
	case ValueKindTime:
		return v.Time.String()
	case ValueKindDuration:
		return v.Duration.String()
	default:
		return nil
	}
}

// String returns the value as it would be written in a script.
func (v Value) String() string {
	switch v.Kind {
	case ValueKindNumber:
		return strconv.FormatFloat(v.Number, 'f', -1, 64)
	case ValueKindString:
		return strconv.Quote(v.Str)
	case ValueKindBoolean:
		if v.Bool {
			return "TRUE"
		}
		return "FALSE"
	case ValueKindTime:
		return fmt.Sprintf("TIME(%d,%d,%d)", v.Time.Hour, v.Time.Minute, v.Time.Second)
	case ValueKindDuration:
		return formatDuration(v.Duration)
	default:
		return "NULL"
	}
}

// formatDuration renders a duration using the largest unit that divides it evenly.
func formatDuration(d time.Duration) string {
	secs := int64(d / time.Second)
	switch {
	case secs != 0 && secs%3600 == 0:
		return plural(secs/3600, "hour")
	case secs != 0 && secs%60 == 0:
		return plural(secs/60, "minute")
	default:
		return plural(secs, "second")
	}
}

func plural(n int64, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
