package main

import (
	"io"
	"os"

	"github.com/alnah/go-hcpdf/internal/hints"
)

// Environment holds injectable dependencies for testability.
type Environment struct {
	Stdout    io.Writer
	Stderr    io.Writer
	LookupEnv func(string) (string, bool)
	Environ   func() []string

	// InContainer reports whether /.dockerenv exists.
	InContainer func() bool
}

// DefaultEnv returns the process environment.
func DefaultEnv() *Environment {
	return &Environment{
		Stdout:      os.Stdout,
		Stderr:      os.Stderr,
		LookupEnv:   os.LookupEnv,
		Environ:     os.Environ,
		InContainer: inContainer,
	}
}

func inContainer() bool {
	return hints.IsInContainer()
}
