package shell

import (
	"fmt"
	"io"
	"maps"
	"slices"

	"github.com/ef-ds/deque"
	"github.com/goccy/go-yaml"
)

// Walk visits every command in the shell's tree breadth first, in the order commands were added.
// Walking stops when fn returns false.
func (s *Shell) Walk(fn func(*Command) bool) {
	var q deque.Deque
	for _, c := range s.Commands() {
		q.PushBack(c)
	}
	for q.Len() > 0 {
		v, _ := q.PopFront()
		c := v.(*Command)
		if !fn(c) {
			return
		}
		for _, sub := range c.Commands() {
			q.PushBack(sub)
		}
	}
}

// Descriptor is a flat, serializable description of a command.
type Descriptor struct {
	Path        string          `yaml:"path"`
	Name        string          `yaml:"name"`
	Aliases     []string        `yaml:"aliases,omitempty"`
	Description string          `yaml:"description,omitempty"`
	Arguments   []string        `yaml:"arguments,omitempty"`
	Flags       map[string]Flag `yaml:"flags,omitempty"`
	Commands    int             `yaml:"commands,omitempty"`
}

// Describe returns a descriptor for every command in the tree, breadth first. Flags are the
// command's effective schema without the reserved help flag.
func (s *Shell) Describe() []Descriptor {
	var out []Descriptor
	s.Walk(func(c *Command) bool {
		d := Descriptor{
			Path:        c.Path(),
			Name:        c.name,
			Aliases:     c.Aliases(),
			Description: c.description,
			Arguments:   c.Arguments(),
			Commands:    c.commands.byID.Len(),
		}
		schema := c.flagConfig()
		schema.Delete(helpFlag)
		if schema.Len() > 0 {
			d.Flags = make(map[string]Flag, schema.Len())
			for pair := schema.Oldest(); pair != nil; pair = pair.Next() {
				d.Flags[pair.Key] = pair.Value
			}
		}
		out = append(out, d)
		return true
	})
	return out
}

// DescribeYAML writes the shell's name, version and command descriptors to w as YAML.
func (s *Shell) DescribeYAML(w io.Writer) error {
	doc := struct {
		Name     string       `yaml:"name"`
		Version  string       `yaml:"version"`
		Plugins  []string     `yaml:"plugins,omitempty"`
		Commands []Descriptor `yaml:"commands"`
	}{
		Name:     s.name,
		Version:  s.version,
		Plugins:  slices.Sorted(maps.Keys(s.plugins)),
		Commands: s.Describe(),
	}
	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("describe %q: %w", s.name, err)
	}
	_, err = w.Write(data)
	return err
}
