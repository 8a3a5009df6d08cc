package usecase

import "errors"

// ErrPersistence wraps unexpected storage failures so controllers can map
// them to 500s without inspecting driver errors.
var ErrPersistence = errors.New("product: persistence failure")
