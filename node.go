package shell

import (
	"maps"
	"strings"

	"github.com/google/uuid"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// registry holds a scope's direct subcommands, indexed by id and by every name and alias.
type registry struct {
	byID  *orderedmap.OrderedMap[uuid.UUID, *Command]
	names map[string]uuid.UUID
}

func newRegistry() *registry {
	return &registry{
		byID:  orderedmap.New[uuid.UUID, *Command](),
		names: make(map[string]uuid.UUID),
	}
}

func (r *registry) add(c *Command) error {
	for _, key := range append([]string{c.name}, c.aliases...) {
		if id, ok := r.names[key]; ok && id != c.id {
			return configErrorf("command %q: name or alias %q is already in use", c.name, key)
		}
	}
	r.byID.Set(c.id, c)
	r.names[c.name] = c.id
	for _, alias := range c.aliases {
		r.names[alias] = c.id
	}
	return nil
}

func (r *registry) lookup(token string) *Command {
	id, ok := r.names[token]
	if !ok {
		return nil
	}
	c, _ := r.byID.Get(id)
	return c
}

func (r *registry) removeID(id uuid.UUID) bool {
	c, ok := r.byID.Delete(id)
	if !ok {
		return false
	}
	maps.DeleteFunc(r.names, func(_ string, v uuid.UUID) bool { return v == id })
	c.parent, c.shell = nil, nil
	return true
}

func (r *registry) removeName(name string) bool {
	id, ok := r.names[name]
	if !ok {
		return false
	}
	return r.removeID(id)
}

func (r *registry) list() []*Command {
	out := make([]*Command, 0, r.byID.Len())
	for pair := r.byID.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Value)
	}
	return out
}

func (r *registry) keys() []string {
	var out []string
	for _, c := range r.list() {
		out = append(out, c.name)
		out = append(out, c.aliases...)
	}
	return out
}

// node is the dispatch capability shared by [Shell] and [Command]: a named scope that owns
// subcommands, middleware, common flags and plugins.
type node struct {
	name        string
	description string
	usage       string
	help        string
	url         string
	support     string
	autohelp    bool
	commands    *registry
	middleware  Chain[*Meta]
	common      CommonFlags
	plugins     map[string]any
}

func newNode(name string) node {
	return node{
		name:     name,
		autohelp: true,
		commands: newRegistry(),
		plugins:  make(map[string]any),
	}
}

// Name returns the canonical name.
func (n *node) Name() string { return n.name }

// URL returns the configured project URL, if any.
func (n *node) URL() string { return n.url }

// Support returns the configured support contact, if any.
func (n *node) Support() string { return n.support }

// Commands returns the direct subcommands in the order they were added.
func (n *node) Commands() []*Command { return n.commands.list() }

// MiddlewareSize returns the number of middleware stages registered directly on this scope.
func (n *node) MiddlewareSize() int { return n.middleware.Size() }

// GetCommand resolves a space separated path of names or aliases below this scope. It returns
// nil if any segment does not resolve.
func (n *node) GetCommand(path string) *Command {
	names := strings.Fields(path)
	if len(names) == 0 {
		return nil
	}
	cmd := n.commands.lookup(names[0])
	for _, name := range names[1:] {
		if cmd == nil {
			return nil
		}
		cmd = cmd.commands.lookup(name)
	}
	return cmd
}

// Remove detaches the direct subcommands with the given names or aliases. Every alias of a
// removed command is removed with it.
func (n *node) Remove(names ...string) {
	for _, name := range names {
		n.commands.removeName(name)
	}
}

// RemoveID detaches the direct subcommands with the given ids.
func (n *node) RemoveID(ids ...uuid.UUID) {
	for _, id := range ids {
		n.commands.removeID(id)
	}
}

func (n *node) ownPlugins() map[string]any {
	return maps.Clone(n.plugins)
}
