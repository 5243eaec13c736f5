// Package numeric provides checked integer narrowing.
package numeric

import "fmt"

// Integer is satisfied by every built-in integer type.
type Integer interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr
}

// A RangeError is returned (or raised by MustCast) when a value cannot be
// represented by the destination type.
type RangeError struct {
	Value  string
	Target string
}

// Error implements error.
func (e *RangeError) Error() string {
	return fmt.Sprintf("numeric: value %s out of range for %s", e.Value, e.Target)
}

// Cast converts x to T. It fails if the conversion would truncate the value
// or flip its sign.
func Cast[T, S Integer](x S) (T, error) {
	out := T(x)
	if S(out) != x || (out < 0) != (x < 0) {
		return out, &RangeError{
			Value:  fmt.Sprint(x),
			Target: fmt.Sprintf("%T", out),
		}
	}
	return out, nil
}

// MustCast is like Cast but panics with a *RangeError on failure.
func MustCast[T, S Integer](x S) T {
	out, err := Cast[T](x)
	if err != nil {
		panic(err)
	}
	return out
}
