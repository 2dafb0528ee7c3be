// Package command turns run-all's command line into descriptors of the
// programs to launch.
package command

import (
	"fmt"
	"strings"
)

// Descriptor describes one program to launch
type Descriptor struct {
	Alias   string   // Name shown in the output prefix
	Program string   // Program name or path
	Args    []string // Arguments passed to the program
}

// ParseError reports a malformed command line
type ParseError struct {
	Message string
}

// Error implements the error interface
func (e *ParseError) Error() string {
	return e.Message
}

// New builds a descriptor from a whitespace separated command string.
// An empty alias defaults to the program name.
func New(alias, commandString string) (Descriptor, error) {
	parts := strings.Fields(commandString)
	if len(parts) == 0 {
		return Descriptor{}, &ParseError{Message: fmt.Sprintf("Could not parse command string: %s", commandString)}
	}

	if alias == "" {
		alias = parts[0]
	}

	return Descriptor{
		Alias:   alias,
		Program: parts[0],
		Args:    parts[1:],
	}, nil
}

// String returns the command line the descriptor was built from
func (d Descriptor) String() string {
	return strings.Join(append([]string{d.Program}, d.Args...), " ")
}
