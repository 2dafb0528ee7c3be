package command

import (
	"fmt"
	"strings"
)

type parseState int

const (
	stateInitial      parseState = iota // Expecting an alias flag or a command
	statePendingAlias                   // Alias flag seen, expecting the alias
	stateHasAlias                       // Alias captured, expecting the command
)

// Parse converts the raw arguments (without the program name) into
// descriptors. Each command may be preceded by -a/--alias <alias>.
// An empty argument list is not an error.
func Parse(args []string) ([]Descriptor, error) {
	var descs []Descriptor
	state := stateInitial
	alias := ""

	for _, arg := range args {
		switch {
		case arg == "-a" || arg == "--alias":
			switch state {
			case statePendingAlias:
				return nil, &ParseError{Message: "Alias expected"}
			case stateHasAlias:
				return nil, &ParseError{Message: "Command expected"}
			}
			state = statePendingAlias

		case strings.HasPrefix(arg, "-"):
			return nil, &ParseError{Message: fmt.Sprintf("Unexpected argument: %s", arg)}

		case state == statePendingAlias:
			alias = arg
			state = stateHasAlias

		default:
			desc, err := New(alias, arg)
			if err != nil {
				return nil, err
			}
			descs = append(descs, desc)
			alias = ""
			state = stateInitial
		}
	}

	switch state {
	case statePendingAlias:
		return nil, &ParseError{Message: "Alias expected"}
	case stateHasAlias:
		return nil, &ParseError{Message: "Command expected"}
	}

	return descs, nil
}
