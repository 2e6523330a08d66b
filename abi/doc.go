// Package abi defines the values that cross the host boundary and their
// memory layout.
//
// Every type here is a plain fixed-size value: no pointers, no slices, no
// strings. A foreign host receives them by value from the C function table
// and never needs to share an allocator with the engine.
//
// # Messages
//
// InMsg and OutMsg are closed enumerations with one-byte discriminants.
// New cases may be appended; existing discriminants never change.
//
// # Option
//
// Option[T] is a two-state tagged union with the Canonical ABI option<T>
// layout (u8 tag, payload at its natural alignment). It converts losslessly
// to and from Go's comma-ok form:
//
//	msg, ok := q.TryRecv()
//	o := abi.Wrap(msg, ok)
//	v, ok := o.Unwrap()
//
// # Layout
//
// NewSchema describes the host interface as WIT type definitions and
// LayoutCalculator computes their size, alignment and payload offsets.
// WriteCHeader and WriteWIT render the interface for foreign toolchains.
package abi
