package model

import "fmt"

// MalformedDeliveryKey is returned when an "over.ball" key does not parse
// into two integers.
type MalformedDeliveryKey struct {
	Key string
}

func (e *MalformedDeliveryKey) Error() string {
	return fmt.Sprintf("malformed delivery key %q", e.Key)
}

// MalformedSequenceError is returned when deliveries within an innings are
// out of (over, ball) order or repeat a key.
type MalformedSequenceError struct {
	Innings int
	Prev    string
	Got     string
}

func (e *MalformedSequenceError) Error() string {
	if e.Prev == e.Got {
		return fmt.Sprintf("innings %d: duplicate delivery %s", e.Innings, e.Got)
	}
	return fmt.Sprintf("innings %d: delivery %s follows %s", e.Innings, e.Got, e.Prev)
}

// MissingFieldError is returned when a delivery lacks a required field.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("missing required field %q", e.Field)
}

// InvalidFieldError is returned when a delivery field is present but
// violates a delivery invariant.
type InvalidFieldError struct {
	Field  string
	Reason string
}

func (e *InvalidFieldError) Error() string {
	return fmt.Sprintf("invalid field %q: %s", e.Field, e.Reason)
}

// DeliveryError locates a delivery-level error inside an innings.
type DeliveryError struct {
	Innings int
	Key     string
	Err     error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("innings %d, delivery %s: %v", e.Innings, e.Key, e.Err)
}

func (e *DeliveryError) Unwrap() error { return e.Err }
