package shell

import (
	"bytes"
	"testing"

	"github.com/goccy/go-yaml"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newWalkShell(t *testing.T) *Shell {
	t.Helper()
	return mustShell(t, ShellConfig{
		Name:    "mycli",
		Plugins: map[string]any{"db": true},
		CommonFlags: CommonFlags{
			Flags: map[string]Flag{"verbose": {Type: TypeBoolean}},
		},
		Commands: Commands{
			{
				Name:        "a",
				Alias:       List{"x"},
				Description: "First.",
				Commands: Commands{{
					Name:      "a1",
					Arguments: Fields("id"),
					Commands:  Commands{{Name: "a11"}},
				}},
			},
			{Name: "b", Commands: Commands{{Name: "b1"}}},
		},
	})
}

func TestWalk(t *testing.T) {
	t.Parallel()

	sh := newWalkShell(t)

	var all []string
	sh.Walk(func(c *Command) bool {
		all = append(all, c.Path())
		return true
	})
	assert.Equal(t, []string{"a", "b", "a a1", "b b1", "a a1 a11"}, all)

	var some []string
	sh.Walk(func(c *Command) bool {
		some = append(some, c.Path())
		return len(some) < 2
	})
	assert.Equal(t, []string{"a", "b"}, some)
}

func TestDescribe(t *testing.T) {
	t.Parallel()

	sh := newWalkShell(t)
	descriptors := sh.Describe()
	require.Len(t, descriptors, 5)

	verbose := map[string]Flag{"verbose": {Type: TypeBoolean}}
	want := []Descriptor{
		{Path: "a", Name: "a", Aliases: []string{"x"}, Description: "First.", Flags: verbose, Commands: 1},
		{Path: "b", Name: "b", Flags: verbose, Commands: 1},
		{Path: "a a1", Name: "a1", Arguments: []string{"id"}, Flags: verbose, Commands: 1},
		{Path: "b b1", Name: "b1", Flags: verbose},
		{Path: "a a1 a11", Name: "a11", Flags: verbose},
	}
	if diff := cmp.Diff(want, descriptors); diff != "" {
		t.Errorf("descriptors mismatch (-want +got):\n%s", diff)
	}

	var buf bytes.Buffer
	require.NoError(t, sh.DescribeYAML(&buf))
	var doc struct {
		Name     string       `yaml:"name"`
		Version  string       `yaml:"version"`
		Plugins  []string     `yaml:"plugins"`
		Commands []Descriptor `yaml:"commands"`
	}
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, "mycli", doc.Name)
	assert.Equal(t, "1.0.0", doc.Version)
	assert.Equal(t, []string{"db"}, doc.Plugins)
	require.Len(t, doc.Commands, 5)
	assert.Equal(t, "a a1 a11", doc.Commands[4].Path)
}
