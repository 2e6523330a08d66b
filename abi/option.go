package abi

import "fmt"

// OptionTag is the discriminant of Option. It occupies one byte, followed by
// the payload at its natural alignment.
type OptionTag uint8

const (
	OptionNone OptionTag = 0
	OptionSome OptionTag = 1
)

// Option is a fixed-layout optional value that can be returned by value
// across the C boundary. The zero value is None.
//
// The layout matches the Canonical ABI option<T>: a u8 tag, then T.
// When Tag is OptionNone, Value is always the zero T.
type Option[T comparable] struct {
	Tag   OptionTag
	Value T
}

// Some wraps a present value.
func Some[T comparable](v T) Option[T] {
	return Option[T]{Tag: OptionSome, Value: v}
}

// None returns the absent value.
func None[T comparable]() Option[T] {
	return Option[T]{}
}

// Wrap converts the comma-ok form into an Option.
// Wrap(o.Unwrap()) == o for every Option built by this package.
func Wrap[T comparable](v T, ok bool) Option[T] {
	if !ok {
		return None[T]()
	}
	return Some(v)
}

// FromPointer converts a nil-able pointer into an Option, copying the value.
func FromPointer[T comparable](p *T) Option[T] {
	if p == nil {
		return None[T]()
	}
	return Some(*p)
}

// Unwrap returns the value and whether it is present.
// Any non-zero tag other than OptionSome is treated as absent.
func (o Option[T]) Unwrap() (T, bool) {
	if o.Tag != OptionSome {
		var zero T
		return zero, false
	}
	return o.Value, true
}

// Pointer returns a pointer to a copy of the value, or nil when absent.
func (o Option[T]) Pointer() *T {
	v, ok := o.Unwrap()
	if !ok {
		return nil
	}
	return &v
}

// IsSome reports whether a value is present.
func (o Option[T]) IsSome() bool { return o.Tag == OptionSome }

// IsNone reports whether the value is absent.
func (o Option[T]) IsNone() bool { return o.Tag != OptionSome }

func (o Option[T]) String() string {
	if v, ok := o.Unwrap(); ok {
		return fmt.Sprintf("Some(%v)", v)
	}
	return "None"
}
