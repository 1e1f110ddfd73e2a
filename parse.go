package shell

import (
	"fmt"
	"slices"
	"strings"

	"github.com/mfridman/shell/internal/arg"
)

// Parse parses the argument body of the command, input without the command path, into a [Meta].
// Parsing never fails: flag problems are reported through [Meta.Valid] and [Meta.Violations].
func (c *Command) Parse(input string) *Meta {
	schema := c.flagConfig()
	res := arg.Parse(arg.Tokenize(input), schemaSpecs(schema))

	m := &Meta{
		Input: strings.TrimSpace(input),
		Flags: ParsedFlags{
			Recognized:   res.Recognized,
			Unrecognized: res.Unrecognized,
		},
		Valid:      res.Valid(),
		Violations: res.Violations,
		Parsed:     res.Supplied,
		Plugins:    c.Plugins(),
		command:    c,
		schema:     schema,
	}
	if s := c.Shell(); s != nil {
		m.stdout, m.stderr = s.stdout, s.stderr
	}
	if requested, _ := res.Recognized[helpFlag].(bool); requested {
		m.Help = HelpRequest{Requested: true, Message: c.Help()}
	}
	m.Data = c.bind(res.Recognized, res.Unrecognized)
	return m
}

// bind builds the data map: recognized flags with a value, then positional names bound in order
// to the unrecognized tokens, then extra tokens as unknown1..N.
func (c *Command) bind(recognized map[string]any, unrecognized []string) map[string]any {
	data := make(map[string]any, len(recognized)+len(unrecognized))
	for name, v := range recognized {
		if name == helpFlag || v == nil {
			continue
		}
		data[name] = v
	}

	for i, name := range c.arguments {
		var v any
		if i < len(unrecognized) {
			v = arg.Unquote(unrecognized[i])
		}
		prev, bound := data[name]
		if !bound {
			data[name] = v
			continue
		}
		if v == nil {
			continue
		}
		if list, ok := prev.([]any); ok {
			data[name] = append(slices.Clone(list), v)
		} else {
			data[name] = []any{prev, v}
		}
	}

	if len(unrecognized) > len(c.arguments) {
		n := 0
		for _, tok := range unrecognized[len(c.arguments):] {
			n++
			name := fmt.Sprintf("unknown%d", n)
			for {
				if _, taken := data[name]; !taken {
					break
				}
				n++
				name = fmt.Sprintf("unknown%d", n)
			}
			data[name] = arg.Unquote(tok)
		}
	}
	return data
}
