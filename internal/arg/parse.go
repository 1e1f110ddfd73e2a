package arg

import (
	"flag"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
)

// Type is the value type of a flag.
type Type string

const (
	String  Type = "string"
	Boolean Type = "boolean"
	Number  Type = "number"
	Integer Type = "integer"
)

// Valid reports whether t is a known flag type. The empty type is treated as [String].
func (t Type) Valid() bool {
	switch t {
	case "", String, Boolean, Number, Integer:
		return true
	}
	return false
}

// Spec describes a single flag the parser accepts.
type Spec struct {
	Name     string
	Aliases  []string
	Type     Type
	Required bool
	Options  []string
	Multiple bool
	Default  any
}

// Result is the outcome of [Parse].
type Result struct {
	// Recognized holds one entry per flag in the schema: the parsed value, the default, or nil.
	Recognized map[string]any
	// Supplied maps the canonical name of every flag present in the input to the name or alias
	// the user typed.
	Supplied map[string]string
	// Unrecognized holds, in input order, every token that was not consumed as a flag or a flag
	// value. Unknown flags are kept verbatim.
	Unrecognized []string
	// Violations lists validation problems. An empty list means the input is valid.
	Violations []string
}

// Valid reports whether parsing produced no violations.
func (r *Result) Valid() bool {
	return len(r.Violations) == 0
}

// Parse resolves tokens against specs. Aliases never shadow a flag name, and when two specs claim
// the same alias the later spec wins.
func Parse(tokens []string, specs []Spec) *Result {
	res := &Result{
		Recognized: make(map[string]any, len(specs)),
		Supplied:   make(map[string]string),
	}

	fset := flag.NewFlagSet("", flag.ContinueOnError)
	fset.SetOutput(io.Discard)
	byName := make(map[string]Spec, len(specs))
	for _, spec := range specs {
		if _, ok := byName[spec.Name]; ok {
			continue
		}
		typ := spec.Type
		if typ == "" {
			typ = String
			spec.Type = String
		}
		fset.Var(&value{typ: typ, multiple: spec.Multiple}, spec.Name, "")
		byName[spec.Name] = spec
	}
	lookup := make(map[string]string, len(byName))
	for _, spec := range specs {
		for _, alias := range spec.Aliases {
			if _, isName := byName[alias]; !isName {
				lookup[alias] = spec.Name
			}
		}
	}
	for name := range byName {
		lookup[name] = name
	}

	for i := 0; i < len(tokens); i++ {
		tok := tokens[i]
		if tok == "--" {
			res.Unrecognized = append(res.Unrecognized, tokens[i+1:]...)
			break
		}
		if !isFlag(tok) {
			res.Unrecognized = append(res.Unrecognized, tok)
			continue
		}
		input, raw, hasValue := strings.Cut(strings.TrimLeft(tok, "-"), "=")
		name, ok := lookup[input]
		if !ok {
			res.Unrecognized = append(res.Unrecognized, tok)
			continue
		}
		spec := byName[name]
		if !hasValue {
			switch {
			case spec.Type == Boolean:
				raw = "true"
				if i+1 < len(tokens) && isBoolLiteral(tokens[i+1]) {
					raw = tokens[i+1]
					i++
				}
			case i+1 < len(tokens) && !isFlag(tokens[i+1]):
				raw = tokens[i+1]
				i++
			default:
				res.Violations = append(res.Violations, fmt.Sprintf("flag %q requires a value", name))
				continue
			}
		}
		if err := fset.Set(name, Unquote(raw)); err != nil {
			res.Violations = append(res.Violations, fmt.Sprintf("flag %q: %v", name, err))
			continue
		}
		res.Supplied[name] = input
	}

	set := make(map[string]bool)
	fset.Visit(func(f *flag.Flag) { set[f.Name] = true })
	for _, spec := range specs {
		if _, done := res.Recognized[spec.Name]; done {
			continue
		}
		spec = byName[spec.Name]
		if !set[spec.Name] {
			def := defaultValue(spec)
			res.Recognized[spec.Name] = def
			if spec.Required && def == nil {
				res.Violations = append(res.Violations, fmt.Sprintf("required flag %q not set", spec.Name))
			}
			continue
		}
		got := fset.Lookup(spec.Name).Value.(flag.Getter).Get()
		res.Recognized[spec.Name] = got
		if len(spec.Options) > 0 {
			for _, v := range values(got) {
				if s := fmt.Sprint(v); !slices.Contains(spec.Options, s) {
					res.Violations = append(res.Violations, fmt.Sprintf("invalid value %q for flag %q (expected one of: %s)",
						s, spec.Name, strings.Join(spec.Options, ", ")))
				}
			}
		}
	}
	return res
}

func isFlag(tok string) bool {
	if len(tok) < 2 || tok[0] != '-' {
		return false
	}
	if _, err := strconv.ParseFloat(tok, 64); err == nil {
		return false
	}
	return true
}

func isBoolLiteral(tok string) bool {
	switch strings.ToLower(tok) {
	case "true", "false":
		return true
	}
	return false
}

func values(v any) []any {
	if vs, ok := v.([]any); ok {
		return vs
	}
	return []any{v}
}

func defaultValue(spec Spec) any {
	switch d := spec.Default.(type) {
	case nil:
		return nil
	case string:
		if spec.Type != String {
			if v, err := convert(spec.Type, d); err == nil {
				return v
			}
		}
	case int:
		return numeric(spec.Type, int64(d), float64(d), d)
	case int64:
		return numeric(spec.Type, d, float64(d), d)
	case uint64:
		return numeric(spec.Type, int64(d), float64(d), d)
	case float64:
		if spec.Type == Integer && d == float64(int64(d)) {
			return int64(d)
		}
	}
	return spec.Default
}

func numeric(typ Type, i int64, f float64, orig any) any {
	switch typ {
	case Number:
		return f
	case Integer:
		return i
	}
	return orig
}

func convert(typ Type, s string) (any, error) {
	switch typ {
	case Boolean:
		v, err := strconv.ParseBool(s)
		if err != nil {
			return nil, fmt.Errorf("invalid boolean value %q", s)
		}
		return v, nil
	case Number:
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number value %q", s)
		}
		return v, nil
	case Integer:
		v, err := strconv.ParseInt(s, 0, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid integer value %q", s)
		}
		return v, nil
	}
	return s, nil
}

// value is a [flag.Getter] that converts input according to its flag type and optionally keeps
// every occurrence.
type value struct {
	typ      Type
	multiple bool
	vals     []any
}

var _ flag.Getter = (*value)(nil)

func (v *value) Set(s string) error {
	x, err := convert(v.typ, s)
	if err != nil {
		return err
	}
	if v.multiple {
		v.vals = append(v.vals, x)
	} else {
		v.vals = []any{x}
	}
	return nil
}

func (v *value) Get() any {
	if v == nil || len(v.vals) == 0 {
		return nil
	}
	if v.multiple {
		return slices.Clone(v.vals)
	}
	return v.vals[0]
}

func (v *value) String() string {
	if v == nil || len(v.vals) == 0 {
		return ""
	}
	if v.multiple {
		return fmt.Sprint(v.vals)
	}
	return fmt.Sprint(v.vals[0])
}

func (v *value) IsBoolFlag() bool {
	return v != nil && v.typ == Boolean
}
