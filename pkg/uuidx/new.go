package uuidx

import "github.com/google/uuid"

// New generates a new UUID using the version 7 format and returns it.
// It panics if the UUID generation fails.
func New() uuid.UUID {
	return uuid.Must(uuid.NewV7())
}

// NewString generates a new UUID using the version 7 format and returns it as a string.
func NewString() string {
	return New().String()
}

// Key returns a prefixed identifier such as "task_0193e4a7...". Version 7
// keeps keys sortable by creation time, which is what entity stores index on.
func Key(prefix string) string {
	return prefix + "_" + NewString()
}
