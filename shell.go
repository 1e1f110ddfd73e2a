package shell

import (
	"cmp"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"os"
	"slices"
	"strings"
	"sync"
)

const (
	defaultVersion    = "1.0.0"
	defaultMaxHistory = 100
	defaultTabWidth   = 4
	defaultTableWidth = 80
)

// Shell is the root of a command tree. It owns the top-level commands, shell-wide common flags,
// middleware and plugins, and the input history, and it is the entry point for dispatch.
//
// The command tree is meant to be configured before dispatch starts and is not safe to modify
// concurrently with [Shell.Exec]. Exec itself may be called from multiple goroutines.
type Shell struct {
	node

	version        string
	helpFunc       func(*Shell) string
	tabWidth       int
	tableWidth     int
	defaultHandler HandlerFunc
	stdout, stderr io.Writer
	logger         *slog.Logger
	history        history

	mu     sync.Mutex
	groups []middlewareGroup
}

// middlewareGroup is a set of shell middleware restricted to, or excluded from, command paths.
// A group without paths applies to every command.
type middlewareGroup struct {
	paths  []string
	except bool
	stages []func(*Meta, func())
}

func (g middlewareGroup) appliesTo(path string) bool {
	if len(g.paths) == 0 {
		return true
	}
	matched := slices.ContainsFunc(g.paths, func(p string) bool { return pathHasPrefix(path, p) })
	return matched != g.except
}

// NewShell creates a shell, and its command tree, from cfg. Malformed configuration is reported
// as an [*Error] with code [ErrConfiguration].
func NewShell(cfg ShellConfig) (*Shell, error) {
	name := firstWord(cfg.Name)
	if name == "" {
		return nil, configErrorf("invalid shell configuration: a name is required")
	}
	s := &Shell{
		node:           newNode(name),
		version:        cmp.Or(cfg.Version, defaultVersion),
		helpFunc:       cfg.HelpFunc,
		tabWidth:       cmp.Or(cfg.TabWidth, defaultTabWidth),
		tableWidth:     cmp.Or(cfg.TableWidth, defaultTableWidth),
		defaultHandler: cfg.DefaultHandler,
		stdout:         cfg.Stdout,
		stderr:         cfg.Stderr,
		logger:         cfg.Logger,
	}
	if s.stdout == nil {
		s.stdout = os.Stdout
	}
	if s.stderr == nil {
		s.stderr = os.Stderr
	}
	if s.logger == nil {
		s.logger = slog.New(slog.DiscardHandler)
	}
	s.history.max = cmp.Or(cfg.MaxHistory, cfg.MaxHistoryItems, defaultMaxHistory)
	if s.history.max < 0 {
		return nil, configErrorf("shell %q: maxhistory must not be negative", name)
	}
	s.description = strings.TrimSpace(cfg.Description)
	s.usage = cfg.Usage
	s.help = cfg.Help
	s.url = cfg.URL
	s.support = cfg.Support
	s.autohelp = helpEnabled(cfg.AutoHelp, cfg.DisableHelp)
	maps.Copy(s.plugins, cfg.Plugins)

	common, err := mergeCommon(cfg.CommonFlag, cfg.CommonFlags).normalize()
	if err != nil {
		return nil, fmt.Errorf("shell %q: %w", name, err)
	}
	s.common = common
	s.Use(cfg.Use...)

	for _, cc := range cfg.Commands {
		cmd, err := NewCommand(cc)
		if err != nil {
			return nil, err
		}
		if err := s.Add(cmd); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Version returns the shell's version.
func (s *Shell) Version() string { return s.version }

// Plugins returns the shell-wide plugins.
func (s *Shell) Plugins() map[string]any { return s.ownPlugins() }

// HelpEnabled reports whether help is enabled shell-wide.
func (s *Shell) HelpEnabled() bool { return s.autohelp }

// Logger returns the shell's logger.
func (s *Shell) Logger() *slog.Logger { return s.logger }

// Add attaches top-level commands. A command can only be attached once, and names and aliases
// must be unique among the shell's commands.
func (s *Shell) Add(cmds ...*Command) error {
	for _, cmd := range cmds {
		if err := attach(cmd); err != nil {
			return err
		}
		if err := s.commands.add(cmd); err != nil {
			return err
		}
		cmd.shell = s
	}
	return nil
}

// Use registers middleware that runs for every command.
func (s *Shell) Use(fns ...MiddlewareFunc) {
	s.addGroup(nil, false, fns)
}

// UseWith registers middleware that runs only for commands at or below the given paths, e.g.
// "account create".
func (s *Shell) UseWith(paths []string, fns ...MiddlewareFunc) {
	s.addGroup(paths, false, fns)
}

// UseExcept registers middleware that runs for every command except those at or below the given
// paths.
func (s *Shell) UseExcept(paths []string, fns ...MiddlewareFunc) {
	s.addGroup(paths, true, fns)
}

func (s *Shell) addGroup(paths []string, except bool, fns []MiddlewareFunc) {
	stages := middlewareStages(fns)
	if len(stages) == 0 {
		return
	}
	var clean []string
	for _, p := range paths {
		if p = strings.Join(strings.Fields(p), " "); p != "" {
			clean = append(clean, p)
		}
	}
	if len(paths) > 0 && len(clean) == 0 && !except {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.groups = append(s.groups, middlewareGroup{paths: clean, except: except, stages: stages})
}

// middlewareFor returns the shell middleware that applies to the command at path, in
// registration order.
func (s *Shell) middlewareFor(path string) []func(*Meta, func()) {
	s.mu.Lock()
	groups := slices.Clone(s.groups)
	s.mu.Unlock()

	var stages []func(*Meta, func())
	for _, g := range groups {
		if g.appliesTo(path) {
			stages = append(stages, g.stages...)
		}
	}
	return stages
}

// MiddlewareSize returns the number of shell middleware stages registered with Use, UseWith and
// UseExcept.
func (s *Shell) MiddlewareSize() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, g := range s.groups {
		n += len(g.stages)
	}
	return n
}

// stderrf writes a dispatch failure to the shell's error stream and returns err unchanged.
func (s *Shell) stderrf(err error, extra string) error {
	fmt.Fprintf(s.stderr, "error: %v\n", err)
	if extra != "" {
		fmt.Fprintln(s.stderr, extra)
	}
	return err
}
