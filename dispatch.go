package shell

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/mfridman/shell/pkg/suggest"
)

// commandPattern splits input into the root command token and the rest.
var commandPattern = regexp.MustCompile(`^(\S+)(?:\s+([\s\S]*))?$`)

const maxSuggestions = 3

// Exec records input in the history, resolves it to a command and runs that command. The input
// is walked token by token through the command tree; the first token that is not a subcommand of
// the command resolved so far, and everything after it, becomes the command's argument body.
//
// Unknown commands are reported on the shell's error stream together with the shell's help and
// returned as an [*Error] with code [ErrResolution]. When no command uses the name, "help" (or
// --help, -h) and "version" (or --version) are answered by the shell.
func (s *Shell) Exec(ctx context.Context, input string) (any, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	s.history.record(input, time.Now())

	match := commandPattern.FindStringSubmatch(strings.TrimSpace(input))
	if match == nil {
		s.logger.DebugContext(ctx, "no command in input")
		return nil, s.stderrf(resolutionError("", nil), s.Help())
	}
	name, rest := match[1], match[2]

	cmd := s.commands.lookup(name)
	if cmd == nil {
		if out, ok := s.builtin(name); ok {
			return out, nil
		}
		suggestions := suggest.FindSimilar(name, s.commands.keys(), maxSuggestions)
		s.logger.DebugContext(ctx, "command not found",
			slog.String("command", name),
			slog.Any("suggestions", suggestions),
		)
		return nil, s.stderrf(resolutionError(name, suggestions), s.Help())
	}

	target, args := cmd.terminal(rest)
	return target.Run(ctx, args)
}

// ExecArgs joins argv style arguments into a single input, quoting arguments that contain
// whitespace, and runs it with [Shell.Exec].
func (s *Shell) ExecArgs(ctx context.Context, args []string) (any, error) {
	return s.Exec(ctx, JoinArgs(args))
}

// JoinArgs joins arguments into a single input string. Arguments containing whitespace are
// wrapped in double quotes; for --flag=value arguments only the value is quoted.
func JoinArgs(args []string) string {
	quoted := make([]string, 0, len(args))
	for _, a := range args {
		quoted = append(quoted, quoteArg(a))
	}
	return strings.Join(quoted, " ")
}

func quoteArg(a string) string {
	if a == "" {
		return `""`
	}
	if !strings.ContainsFunc(a, unicode.IsSpace) {
		return a
	}
	if len(a) >= 2 && (a[0] == '"' || a[0] == '\'') && a[len(a)-1] == a[0] {
		return a
	}
	if strings.HasPrefix(a, "-") {
		if name, val, ok := strings.Cut(a, "="); ok && !strings.ContainsFunc(name, unicode.IsSpace) {
			return name + "=" + quote(val)
		}
	}
	return quote(a)
}

// quote wraps s in double quotes, escaping only the double quotes inside it.
func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
}

// builtin answers the help and version requests the shell handles itself.
func (s *Shell) builtin(name string) (string, bool) {
	switch name {
	case "help", "--help", "-h":
		if !s.autohelp {
			return "", false
		}
		help := s.Help()
		fmt.Fprintln(s.stdout, help)
		return help, true
	case "version", "--version":
		fmt.Fprintln(s.stdout, s.version)
		return s.version, true
	}
	return "", false
}

// Run parses input as the command's argument body and runs the command:
//
//  1. If help was requested and help is enabled, the help text is written to stdout and
//     returned, and only the trailers run.
//  2. Middleware runs in order: shell middleware matching the command path, then the middleware
//     of every command from the root down to this one.
//  3. The handler runs. Commands without a handler use the shell's default handler, or print
//     their help.
//  4. Trailers run.
//
// Flag violations do not stop the handler; they are reported through [Meta.Violations]. If a
// middleware stage does not call next, Run returns [ErrHalted] after the trailers ran.
func (c *Command) Run(ctx context.Context, input string) (any, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	m := c.Parse(input)
	m.ctx = ctx

	logger := c.logger()
	logger.DebugContext(ctx, "dispatch",
		slog.String("command", c.CommandRoot()),
		slog.String("input", m.Input),
	)
	if !m.Valid {
		logger.DebugContext(ctx, "flag violations", slog.Any("violations", m.Violations))
	}

	if m.Help.Requested && c.HelpEnabled() {
		fmt.Fprintln(m.Stdout(), m.Help.Message)
		c.trailers.Run(m, nil)
		return m.Help.Message, nil
	}

	var (
		handler = c.handlerFunc()
		result  any
		err     error
	)
	reached := c.chain().Run(m, func(m *Meta) {
		result, err = handler(ctx, m)
	})
	c.trailers.Run(m, nil)
	if !reached {
		logger.DebugContext(ctx, "middleware halted", slog.String("command", c.CommandRoot()))
		return nil, ErrHalted
	}
	return result, err
}

// chain assembles the middleware for a single run. It is rebuilt on every call so middleware
// registered after the tree was built is picked up.
func (c *Command) chain() *Chain[*Meta] {
	ch := new(Chain[*Meta])
	if s := c.Shell(); s != nil {
		ch.Use(s.middlewareFor(c.Path())...)
	}
	var lineage []*Command
	for cur := c; cur != nil; cur = cur.parent {
		lineage = append(lineage, cur)
	}
	for i := len(lineage) - 1; i >= 0; i-- {
		ch.Use(lineage[i].middleware.Stages()...)
	}
	return ch
}

func (c *Command) handlerFunc() HandlerFunc {
	if c.HasHandler() {
		return c.handler
	}
	if s := c.Shell(); s != nil && s.defaultHandler != nil {
		return s.defaultHandler
	}
	return printHelp
}

// printHelp is the handler of commands without one.
func printHelp(_ context.Context, m *Meta) (any, error) {
	help := m.Command().Help()
	if help != "" {
		fmt.Fprintln(m.Stdout(), help)
	}
	return help, nil
}

func (c *Command) logger() *slog.Logger {
	if s := c.Shell(); s != nil {
		return s.Logger()
	}
	return slog.New(slog.DiscardHandler)
}
