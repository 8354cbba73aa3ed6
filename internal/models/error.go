package models

import (
	"fmt"
	"sync"
)

// AppError is a failure tied to one file.
type AppError struct {
	Path    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s - %v", e.Path, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

func (e *AppError) Unwrap() error { return e.Err }

type FileErrorMap struct {
	Errors map[string][]AppError
	Mu     sync.Mutex
}

func NewFileErrorMap() *FileErrorMap {
	return &FileErrorMap{Errors: make(map[string][]AppError)}
}
