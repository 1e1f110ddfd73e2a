package shell

import (
	"fmt"
	"slices"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/mfridman/shell/internal/arg"
)

// FlagType is the value type of a flag.
type FlagType = arg.Type

// Supported flag types. A flag without a type is a string flag.
const (
	TypeString  FlagType = arg.String
	TypeBoolean FlagType = arg.Boolean
	TypeNumber  FlagType = arg.Number
	TypeInteger FlagType = arg.Integer
)

// helpFlag is the reserved boolean flag added to every scope with help enabled.
const helpFlag = "help"

// Flag describes a named, optionally aliased input switch.
type Flag struct {
	Description string `yaml:"description,omitempty"`
	// Alias is a convenience for a single alias. It is merged into Aliases.
	Alias   string `yaml:"alias,omitempty"`
	Aliases List   `yaml:"aliases,omitempty"`
	// Type defaults to [TypeString].
	Type     FlagType `yaml:"type,omitempty"`
	Required bool     `yaml:"required,omitempty"`
	// Options restricts the accepted values.
	Options []string `yaml:"options,omitempty"`
	// AllowMultipleValues keeps every occurrence of the flag, in input order, as a []any.
	AllowMultipleValues bool `yaml:"allowMultipleValues,omitempty"`
	Default             any  `yaml:"default,omitempty"`
}

// CommonFlags is a flag schema inherited by every descendant of the scope that declares it.
type CommonFlags struct {
	Flags map[string]Flag `yaml:"flags,omitempty"`
	// Ignore lists command paths, relative to the shell, whose subtrees do not inherit these
	// flags.
	Ignore List `yaml:"ignore,omitempty"`
}

// List is a list of names. In YAML it may be written as a sequence or as a single string of
// names separated by whitespace or commas.
type List []string

// Fields splits s on whitespace and commas. It is a convenience for building a [List], e.g.
// Arguments: shell.Fields("email displayName").
func Fields(s string) List {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})
}

func (f Flag) normalize(name string) (Flag, error) {
	if name == "" || strings.ContainsAny(name, " \t\n=") || strings.HasPrefix(name, "-") {
		return Flag{}, configErrorf("invalid flag name %q", name)
	}
	if !f.Type.Valid() {
		return Flag{}, configErrorf("flag %q: unsupported type %q", name, f.Type)
	}
	if f.Type == "" {
		f.Type = TypeString
	}
	aliases := slices.Clone(f.Aliases)
	if f.Alias != "" {
		aliases = append(aliases, f.Alias)
	}
	f.Alias = ""
	f.Aliases = nil
	for _, a := range aliases {
		a = strings.TrimLeft(strings.TrimSpace(a), "-")
		if a == "" || strings.ContainsAny(a, " \t\n=") {
			return Flag{}, configErrorf("flag %q: invalid alias %q", name, a)
		}
		if a != name && !slices.Contains(f.Aliases, a) {
			f.Aliases = append(f.Aliases, a)
		}
	}
	f.Options = slices.Clone(f.Options)
	return f, nil
}

func (f Flag) spec(name string) arg.Spec {
	return arg.Spec{
		Name:     name,
		Aliases:  f.Aliases,
		Type:     f.Type,
		Required: f.Required,
		Options:  f.Options,
		Multiple: f.AllowMultipleValues,
		Default:  f.Default,
	}
}

func normalizeFlags(flags map[string]Flag) (map[string]Flag, error) {
	out := make(map[string]Flag, len(flags))
	for name, f := range flags {
		nf, err := f.normalize(name)
		if err != nil {
			return nil, err
		}
		out[name] = nf
	}
	return out, nil
}

func (cf CommonFlags) normalize() (CommonFlags, error) {
	flags, err := normalizeFlags(cf.Flags)
	if err != nil {
		return CommonFlags{}, fmt.Errorf("common flags: %w", err)
	}
	var ignore List
	for _, p := range cf.Ignore {
		if p = strings.Join(strings.Fields(p), " "); p != "" {
			ignore = append(ignore, p)
		}
	}
	return CommonFlags{Flags: flags, Ignore: ignore}, nil
}

// appliesTo reports whether the block is inherited by the command at path.
func (cf CommonFlags) appliesTo(path string) bool {
	for _, p := range cf.Ignore {
		if pathHasPrefix(path, p) {
			return false
		}
	}
	return true
}

// pathHasPrefix reports whether the space separated command path starts with the whole-token
// prefix p.
func pathHasPrefix(path, p string) bool {
	return path == p || strings.HasPrefix(path, p+" ")
}

// flagSchema is an ordered flag schema. Later entries win on alias resolution.
type flagSchema = orderedmap.OrderedMap[string, Flag]

// mergeSorted adds flags to schema in name order so merges are deterministic. A flag that is
// already present is replaced and moved to the end.
func mergeSorted(schema *flagSchema, flags map[string]Flag) {
	names := make([]string, 0, len(flags))
	for name := range flags {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		schema.Delete(name)
		schema.Set(name, flags[name])
	}
}

// lookupFlag resolves a name or alias in schema. Exact names win, then the last flag declaring
// the alias.
func lookupFlag(schema *flagSchema, name string) (string, Flag, bool) {
	name = strings.TrimLeft(name, "-")
	if f, ok := schema.Get(name); ok {
		return name, f, true
	}
	for pair := schema.Newest(); pair != nil; pair = pair.Prev() {
		if slices.Contains(pair.Value.Aliases, name) {
			return pair.Key, pair.Value, true
		}
	}
	return "", Flag{}, false
}

func schemaSpecs(schema *flagSchema) []arg.Spec {
	specs := make([]arg.Spec, 0, schema.Len())
	for pair := schema.Oldest(); pair != nil; pair = pair.Next() {
		specs = append(specs, pair.Value.spec(pair.Key))
	}
	return specs
}
