package shell

import (
	"context"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/mfridman/shell/internal/arg"
)

// Meta is the structured result of parsing one command's input. A new Meta is created for every
// dispatch and handed to middleware, the handler and trailers. Use [GetFlag] for typed flag
// access.
type Meta struct {
	// Input is the argument body the command was run with, without the command path.
	Input string
	// Flags holds the parsed flags.
	Flags ParsedFlags
	// Valid is true when the flag parser reported no violations.
	Valid bool
	// Violations lists validation problems such as missing required flags. They are advisory:
	// the handler still runs and decides what to do.
	Violations []string
	// Data maps flag names and positional argument names to their values. Extra positional
	// values are named unknown1, unknown2, and so on. A name bound more than once holds a []any.
	Data map[string]any
	// Plugins holds the plugins visible to the command.
	Plugins map[string]any
	// Help describes whether help was requested.
	Help HelpRequest
	// Parsed maps every flag present in the input to the name or alias the user typed.
	Parsed map[string]string

	ctx            context.Context
	command        *Command
	schema         *flagSchema
	stdout, stderr io.Writer
}

// ParsedFlags splits the input into recognized flag values and everything else.
type ParsedFlags struct {
	// Recognized holds a value for every flag in the command's effective schema: the parsed
	// value, the default, or nil.
	Recognized map[string]any
	// Unrecognized holds the tokens not consumed as flags, in input order.
	Unrecognized []string
}

// HelpRequest reports a help request made through the help flag.
type HelpRequest struct {
	Requested bool
	// Message is the command's help text when help was requested.
	Message string
}

// Command returns the command being run.
func (m *Meta) Command() *Command { return m.command }

// Shell returns the shell that owns the command, or nil.
func (m *Meta) Shell() *Shell {
	if m.command == nil {
		return nil
	}
	return m.command.Shell()
}

// Context returns the context of the dispatch. It is never nil.
func (m *Meta) Context() context.Context {
	if m.ctx == nil {
		return context.Background()
	}
	return m.ctx
}

// Stdout returns the writer for regular output.
func (m *Meta) Stdout() io.Writer {
	if m.stdout == nil {
		return os.Stdout
	}
	return m.stdout
}

// Stderr returns the writer for error output.
func (m *Meta) Stderr() io.Writer {
	if m.stderr == nil {
		return os.Stderr
	}
	return m.stderr
}

// Flag returns the value of a flag by name or alias. When name is not a flag but one of the
// command's positional argument names, the positional value is returned instead. It returns nil
// when nothing matches.
func (m *Meta) Flag(name string) any {
	if m.schema != nil {
		if canonical, _, ok := lookupFlag(m.schema, name); ok {
			return m.Flags.Recognized[canonical]
		}
	}
	if m.command != nil {
		if i := slices.Index(m.command.arguments, name); i >= 0 && i < len(m.Flags.Unrecognized) {
			return m.Arg(i)
		}
	}
	return nil
}

// Arg returns the i-th unrecognized token with one layer of quotes removed, or an empty string.
func (m *Meta) Arg(i int) string {
	if i < 0 || i >= len(m.Flags.Unrecognized) {
		return ""
	}
	return arg.Unquote(m.Flags.Unrecognized[i])
}

// GetFlag retrieves a flag value by name or alias with type inference. Example usage:
//
//	verbose := GetFlag[bool](m, "verbose")
//	count := GetFlag[float64](m, "count")
//	path := GetFlag[string](m, "path")
//
// Flags that were not supplied and have no default return the zero value of T. Flags of type
// number are float64, integer flags are int64, and flags allowing multiple values are []any.
//
// If the flag is not part of the command's schema, or T does not match the flag's value, GetFlag
// panics: both are programming errors.
func GetFlag[T any](m *Meta, name string) T {
	var zero T
	if m.schema == nil {
		panic(fmt.Sprintf("internal error: flag not found: %q (no schema)", name))
	}
	canonical, _, ok := lookupFlag(m.schema, name)
	if !ok {
		panic(fmt.Sprintf("internal error: flag not found: %q in command %q", name, m.command.CommandRoot()))
	}
	v := m.Flags.Recognized[canonical]
	if v == nil {
		return zero
	}
	t, ok := v.(T)
	if !ok {
		panic(fmt.Sprintf("internal error: type mismatch for flag %q: registered %T, requested %T", name, v, zero))
	}
	return t
}
