package testutil

import (
	"errors"
)

const DatabaseError = "database error occurred"

// OperationResult wraps a generic repository return for table driven tests.
type OperationResult[T any] struct {
	Data T
	Err  error
}

// Return a generic typed error return for a store call.
func GetMockRepoError[T any]() *OperationResult[T] {
	return NewErrorResult[T](DatabaseError)
}

func NewErrorResult[T any](err string) *OperationResult[T] {
	return &OperationResult[T]{
		Data: *new(T),
		Err:  errors.New(err),
	}
}

// Wrap a generic Data into a OperationResult struct.
func NewSuccessResult[T any](Data T) *OperationResult[T] {
	return &OperationResult[T]{
		Data: Data,
		Err:  nil,
	}
}
