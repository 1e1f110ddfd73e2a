package shell

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"
	"unicode"

	"github.com/google/uuid"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// HandlerFunc is a command's execution logic. It receives the invocation metadata produced by
// parsing the command's input. The returned value becomes the result of [Shell.Exec].
type HandlerFunc func(ctx context.Context, m *Meta) (any, error)

// Command is a named, dispatchable unit with an optional handler, flags, positional argument
// names and nested subcommands. Commands are created with [NewCommand] and attached to exactly
// one parent: a [Shell] or another Command.
type Command struct {
	node

	id        uuid.UUID
	aliases   []string
	flags     map[string]Flag
	arguments []string
	handler   HandlerFunc
	helpFunc  func(*Command) string
	trailers  Chain[*Meta]

	parent *Command
	shell  *Shell
}

// NewCommand creates a command, and its subcommands, from cfg. Malformed configuration is
// reported as an [*Error] with code [ErrConfiguration].
func NewCommand(cfg Config) (*Command, error) {
	name := firstWord(cfg.Name)
	if name == "" {
		return nil, configErrorf("invalid command configuration: a name is required")
	}
	c := &Command{
		node:     newNode(name),
		id:       uuid.New(),
		handler:  cfg.Handler,
		helpFunc: cfg.HelpFunc,
	}
	c.description = strings.TrimSpace(cfg.Description)
	c.usage = cfg.Usage
	c.help = cfg.Help
	c.url = cfg.URL
	c.support = cfg.Support
	c.autohelp = helpEnabled(cfg.AutoHelp, cfg.DisableHelp)
	maps.Copy(c.plugins, cfg.Plugins)

	for _, alias := range slices.Concat(cfg.Alias, cfg.Aliases) {
		alias = strings.TrimSpace(alias)
		if alias == "" || strings.ContainsAny(alias, " \t\n") {
			return nil, configErrorf("command %q: invalid alias %q", name, alias)
		}
		if alias != name && !slices.Contains(c.aliases, alias) {
			c.aliases = append(c.aliases, alias)
		}
	}

	flags, err := normalizeFlags(cfg.Flags)
	if err != nil {
		return nil, fmt.Errorf("command %q: %w", name, err)
	}
	c.flags = flags

	for _, a := range cfg.Arguments {
		for _, f := range Fields(a) {
			if slices.Contains(c.arguments, f) {
				return nil, configErrorf("command %q: duplicate argument name %q", name, f)
			}
			c.arguments = append(c.arguments, f)
		}
	}

	common, err := mergeCommon(cfg.CommonFlag, cfg.CommonFlags).normalize()
	if err != nil {
		return nil, fmt.Errorf("command %q: %w", name, err)
	}
	c.common = common

	c.middleware.Use(middlewareStages(cfg.Use)...)
	c.trailers.Use(middlewareStages(cfg.Trailer)...)

	for _, sub := range slices.Concat(cfg.Commands, cfg.Subcommands) {
		child, err := NewCommand(sub)
		if err != nil {
			return nil, fmt.Errorf("command %q: %w", name, err)
		}
		if err := c.Add(child); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// ID returns the command's unique id.
func (c *Command) ID() uuid.UUID { return c.id }

// Aliases returns the command's aliases.
func (c *Command) Aliases() []string { return slices.Clone(c.aliases) }

// Arguments returns the positional argument names, in binding order.
func (c *Command) Arguments() []string { return slices.Clone(c.arguments) }

// Parent returns the parent command, or nil for a command attached directly to a shell.
func (c *Command) Parent() *Command { return c.parent }

// Shell returns the shell that owns the command's tree, or nil if the tree is not attached.
func (c *Command) Shell() *Shell {
	if c.shell != nil {
		return c.shell
	}
	if c.parent != nil {
		return c.parent.Shell()
	}
	return nil
}

// HasHandler reports whether the command has its own handler.
func (c *Command) HasHandler() bool { return c.handler != nil }

// Handle replaces the command's handler.
func (c *Command) Handle(h HandlerFunc) { c.handler = h }

// Use appends middleware to the command. Command middleware also runs for every descendant.
func (c *Command) Use(fns ...MiddlewareFunc) { c.middleware.Use(middlewareStages(fns)...) }

// UseTrailer appends trailer stages, which run after the handler.
func (c *Command) UseTrailer(fns ...MiddlewareFunc) { c.trailers.Use(middlewareStages(fns)...) }

// TrailerSize returns the number of trailer stages.
func (c *Command) TrailerSize() int { return c.trailers.Size() }

// Add attaches commands as subcommands. A command can only be attached once, cannot be attached
// below itself, and names and aliases must be unique among siblings.
func (c *Command) Add(cmds ...*Command) error {
	for _, cmd := range cmds {
		if err := attach(cmd); err != nil {
			return err
		}
		for p := c; p != nil; p = p.parent {
			if p == cmd {
				return configErrorf("command %q cannot be added below itself", cmd.name)
			}
		}
		if err := c.commands.add(cmd); err != nil {
			return err
		}
		cmd.parent = c
	}
	return nil
}

func attach(cmd *Command) error {
	if cmd == nil {
		return configErrorf("cannot add a nil command")
	}
	if cmd.parent != nil || cmd.shell != nil {
		return configErrorf("command %q is already attached to %q", cmd.name, cmd.CommandRoot())
	}
	return nil
}

// Path returns the command's path relative to its shell, e.g. "account create".
func (c *Command) Path() string {
	if c.parent != nil {
		return c.parent.Path() + " " + c.name
	}
	return c.name
}

// CommandRoot returns the full invocation path including the shell name, e.g.
// "mycli account create".
func (c *Command) CommandRoot() string {
	if s := c.Shell(); s != nil {
		return strings.TrimSpace(s.name + " " + c.Path())
	}
	return c.Path()
}

// HelpEnabled reports whether help is enabled for the command. Disabling help on any ancestor
// scope disables it for the whole subtree.
func (c *Command) HelpEnabled() bool {
	if !c.autohelp {
		return false
	}
	if c.parent != nil {
		return c.parent.HelpEnabled()
	}
	if c.shell != nil {
		return c.shell.autohelp
	}
	return true
}

// Plugins returns the plugins visible to the command: the shell's, overridden by each ancestor's
// from the root down, overridden by the command's own.
func (c *Command) Plugins() map[string]any {
	var out map[string]any
	switch {
	case c.parent != nil:
		out = c.parent.Plugins()
	case c.Shell() != nil:
		out = c.Shell().Plugins()
	default:
		out = make(map[string]any)
	}
	maps.Copy(out, c.plugins)
	return out
}

// AddFlag adds or replaces one of the command's own flags.
func (c *Command) AddFlag(name string, f Flag) error {
	nf, err := f.normalize(name)
	if err != nil {
		return fmt.Errorf("command %q: %w", c.name, err)
	}
	c.flags[name] = nf
	return nil
}

// RemoveFlag removes one of the command's own flags. Inherited common flags are not affected.
func (c *Command) RemoveFlag(name string) {
	delete(c.flags, name)
}

// SupportsFlag reports whether the command itself declares the flag.
func (c *Command) SupportsFlag(name string) bool {
	_, ok := c.flags[name]
	return ok
}

// GetFlagConfiguration returns the normalized configuration of a flag in the command's
// effective schema, looked up by name or alias. The reserved help flag is not included.
func (c *Command) GetFlagConfiguration(name string) (Flag, bool) {
	schema := c.flagConfig()
	schema.Delete(helpFlag)
	_, f, ok := lookupFlag(schema, name)
	if !ok {
		return Flag{}, false
	}
	f.Aliases = slices.Clone(f.Aliases)
	f.Options = slices.Clone(f.Options)
	return f, true
}

// commonFlags returns the inherited common flags for the command, in merge order: the shell's,
// then each ancestor's from the root down to the command itself.
func (c *Command) commonFlags() *flagSchema {
	path := c.Path()
	var lineage []*Command
	for cur := c; cur != nil; cur = cur.parent {
		lineage = append(lineage, cur)
	}
	slices.Reverse(lineage)

	schema := orderedmap.New[string, Flag]()
	if s := c.Shell(); s != nil && s.common.appliesTo(path) {
		mergeSorted(schema, s.common.Flags)
	}
	for _, anc := range lineage {
		if anc.common.appliesTo(path) {
			mergeSorted(schema, anc.common.Flags)
		}
	}
	return schema
}

// flagConfig returns the effective flag schema: inherited common flags overridden by the
// command's own flags, plus the reserved help flag when help is enabled.
func (c *Command) flagConfig() *flagSchema {
	schema := c.commonFlags()
	mergeSorted(schema, c.flags)
	if _, ok := schema.Get(helpFlag); !ok && c.HelpEnabled() {
		schema.Set(helpFlag, Flag{
			Description: fmt.Sprintf("Display %s help.", c.name),
			Type:        TypeBoolean,
			Default:     false,
		})
	}
	return schema
}

// terminal walks input greedily through the command's subcommands. It returns the deepest
// command matched and the remaining argument body. A token that does not match stops the walk,
// even if a later token would.
func (c *Command) terminal(input string) (*Command, string) {
	cur := c
	rest := strings.TrimSpace(input)
	for rest != "" {
		token, remainder := rest, ""
		if i := strings.IndexFunc(rest, unicode.IsSpace); i >= 0 {
			token, remainder = rest[:i], rest[i:]
		}
		sub := cur.commands.lookup(token)
		if sub == nil {
			break
		}
		cur = sub
		rest = strings.TrimSpace(remainder)
	}
	return cur, rest
}
