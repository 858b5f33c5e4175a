package persistence

import "fmt"

type StorageLayerError struct {
	Cause error
}

func (e StorageLayerError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("error in underlying storage layer: %v", e.Cause)
	}
	return "error in underlying storage layer"
}

func (e StorageLayerError) Unwrap() error {
	return e.Cause
}

type NotFoundError struct {
	Kind string
	Id   string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.Id)
}

type ConflictError struct {
	Kind string
	Id   string
}

func (e ConflictError) Error() string {
	return fmt.Sprintf("conflicting update on %s %s", e.Kind, e.Id)
}
