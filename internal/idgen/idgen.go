package idgen

import "github.com/google/uuid"

// NewFunc produces identifiers; tests may swap it for a deterministic
// sequence.
var NewFunc = func() string { return uuid.New().String() }

// New returns a new globally unique identifier as a string.
func New() string { return NewFunc() }
