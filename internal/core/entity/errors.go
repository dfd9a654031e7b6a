package entity

import "errors"

var (
	// Value store errors

	ErrValueNotFound = errors.New("value not found")
	ErrValueType     = errors.New("value has unexpected type")

	// Capability errors

	ErrCapabilityNotComparable = errors.New("capability type is not comparable")

	// Pool errors

	ErrNoFactory = errors.New("entity pool has no factory")
)
