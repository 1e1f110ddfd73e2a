package shell

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/goccy/go-yaml"
)

// Config describes a command. It can be written as a Go literal or loaded from YAML with
// [LoadConfig]; functions (handlers, middleware, custom help) cannot be expressed in YAML and are
// attached in Go.
type Config struct {
	// Name is required. Only the first whitespace delimited word is used.
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`
	// Usage replaces the generated one line usage.
	Usage string `yaml:"usage,omitempty"`
	// Help replaces the generated help text.
	Help     string               `yaml:"help,omitempty"`
	HelpFunc func(*Command) string `yaml:"-"`
	Handler  HandlerFunc          `yaml:"-"`

	Alias   List `yaml:"alias,omitempty"`
	Aliases List `yaml:"aliases,omitempty"`

	Flags map[string]Flag `yaml:"flags,omitempty"`
	// Arguments names the positional arguments, in order.
	Arguments List `yaml:"arguments,omitempty"`

	Commands    Commands `yaml:"commands,omitempty"`
	Subcommands Commands `yaml:"subcommands,omitempty"`

	Use     []MiddlewareFunc `yaml:"-"`
	Trailer []MiddlewareFunc `yaml:"-"`

	// AutoHelp, when set to false, disables the reserved help flag and generated help. It is the
	// inverse of DisableHelp; either one disables help.
	AutoHelp    *bool `yaml:"autohelp,omitempty"`
	DisableHelp bool  `yaml:"disableHelp,omitempty"`

	CommonFlag  CommonFlags `yaml:"commonflag,omitempty"`
	CommonFlags CommonFlags `yaml:"commonflags,omitempty"`

	// Plugins are arbitrary values made available to handlers through [Meta.Plugins]. A key
	// defined here shadows the same key of every ancestor for this subtree.
	Plugins map[string]any `yaml:"plugins,omitempty"`

	URL     string `yaml:"url,omitempty"`
	Support string `yaml:"support,omitempty"`
}

// ShellConfig describes a shell, the root of a command tree.
type ShellConfig struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`
	// Version defaults to 1.0.0.
	Version  string              `yaml:"version,omitempty"`
	Usage    string              `yaml:"usage,omitempty"`
	Help     string              `yaml:"help,omitempty"`
	HelpFunc func(*Shell) string `yaml:"-"`

	// MaxHistory bounds the number of remembered inputs. Defaults to 100.
	MaxHistory      int `yaml:"maxhistory,omitempty"`
	MaxHistoryItems int `yaml:"maxHistoryItems,omitempty"`

	TabWidth   int `yaml:"tabWidth,omitempty"`
	TableWidth int `yaml:"tableWidth,omitempty"`

	Commands    Commands    `yaml:"commands,omitempty"`
	CommonFlag  CommonFlags `yaml:"commonflag,omitempty"`
	CommonFlags CommonFlags `yaml:"commonflags,omitempty"`

	Plugins map[string]any   `yaml:"plugins,omitempty"`
	Use     []MiddlewareFunc `yaml:"-"`

	AutoHelp    *bool `yaml:"autohelp,omitempty"`
	DisableHelp bool  `yaml:"disableHelp,omitempty"`

	URL     string `yaml:"url,omitempty"`
	Support string `yaml:"support,omitempty"`

	// DefaultHandler runs for commands that have no handler of their own. When nil such commands
	// print their help.
	DefaultHandler HandlerFunc `yaml:"-"`

	// Stdout and Stderr receive help text and dispatch errors. They default to os.Stdout and
	// os.Stderr.
	Stdout, Stderr io.Writer `yaml:"-"`
	// Logger receives debug records about dispatch. Defaults to a logger that discards.
	Logger *slog.Logger `yaml:"-"`
}

// Commands is a list of command configurations. In YAML it may be written as a sequence, or as a
// mapping from command name to configuration.
type Commands []Config

// LoadConfig decodes a YAML command configuration. Unrecognized keys are an error.
func LoadConfig(data []byte) (Config, error) {
	var cfg Config
	if err := decodeStrict(data, &cfg); err != nil {
		return Config{}, configErrorf("load command config: %w", err)
	}
	return cfg, nil
}

// LoadShellConfig decodes a YAML shell configuration. Unrecognized keys are an error.
func LoadShellConfig(data []byte) (ShellConfig, error) {
	var cfg ShellConfig
	if err := decodeStrict(data, &cfg); err != nil {
		return ShellConfig{}, configErrorf("load shell config: %w", err)
	}
	return cfg, nil
}

func decodeStrict(data []byte, v any) error {
	return yaml.UnmarshalWithOptions(data, v, yaml.DisallowUnknownField())
}

func (c *Commands) UnmarshalYAML(data []byte) error {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch raw.(type) {
	case nil:
		*c = nil
		return nil
	case []any:
		var list []Config
		if err := decodeStrict(data, &list); err != nil {
			return err
		}
		*c = list
		return nil
	case map[string]any, map[any]any:
	default:
		return fmt.Errorf("commands must be a list or a mapping, got %T", raw)
	}
	var byName yaml.MapSlice
	if err := yaml.UnmarshalWithOptions(data, &byName, yaml.UseOrderedMap()); err != nil {
		return fmt.Errorf("commands must be a list or a mapping: %w", err)
	}
	list := make([]Config, 0, len(byName))
	for _, item := range byName {
		body, err := yaml.Marshal(item.Value)
		if err != nil {
			return err
		}
		var cfg Config
		if err := decodeStrict(body, &cfg); err != nil {
			return fmt.Errorf("command %v: %w", item.Key, err)
		}
		cfg.Name = fmt.Sprint(item.Key)
		list = append(list, cfg)
	}
	*c = list
	return nil
}

func (l *List) UnmarshalYAML(data []byte) error {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch v := raw.(type) {
	case nil:
		*l = nil
	case string:
		*l = Fields(v)
	case []any:
		out := make(List, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return fmt.Errorf("expected a string, got %T", item)
			}
			out = append(out, strings.TrimSpace(s))
		}
		*l = out
	default:
		return fmt.Errorf("expected a string or a list of strings, got %T", raw)
	}
	return nil
}

// firstWord returns the first whitespace delimited word of s.
func firstWord(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

func helpEnabled(auto *bool, disable bool) bool {
	if disable {
		return false
	}
	return auto == nil || *auto
}

func mergeCommon(a, b CommonFlags) CommonFlags {
	if len(a.Flags) == 0 && len(a.Ignore) == 0 {
		return b
	}
	if len(b.Flags) == 0 && len(b.Ignore) == 0 {
		return a
	}
	out := CommonFlags{Flags: make(map[string]Flag, len(a.Flags)+len(b.Flags))}
	for k, v := range a.Flags {
		out.Flags[k] = v
	}
	for k, v := range b.Flags {
		out.Flags[k] = v
	}
	out.Ignore = append(append(List{}, a.Ignore...), b.Ignore...)
	return out
}
