package shell

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testShellYAML = `
name: mycli
version: 2.0.0
maxhistory: 5
commonflags:
  flags:
    verbose:
      alias: V
      type: boolean
  ignore: [account delete]
plugins:
  region: us-east
commands:
  account:
    alias: acct, a
    description: Manage accounts.
    commands:
      - name: create
        arguments: email displayName
        flags:
          admin:
            type: boolean
            aliases: [adm]
      - name: delete
  status:
    description: Show status.
`

func TestLoadShellConfig(t *testing.T) {
	t.Parallel()

	t.Run("commands as a mapping", func(t *testing.T) {
		t.Parallel()
		cfg, err := LoadShellConfig([]byte(testShellYAML))
		require.NoError(t, err)
		require.Len(t, cfg.Commands, 2)

		account := cfg.Commands[0]
		assert.Equal(t, "account", account.Name)
		assert.Equal(t, List{"acct", "a"}, account.Alias)
		require.Len(t, account.Commands, 2)
		assert.Equal(t, List{"email", "displayName"}, account.Commands[0].Arguments)
		assert.Equal(t, "status", cfg.Commands[1].Name)
		assert.Equal(t, List{"account delete"}, cfg.CommonFlags.Ignore)

		want := map[string]Flag{"admin": {Type: TypeBoolean, Aliases: List{"adm"}}}
		if diff := cmp.Diff(want, account.Commands[0].Flags); diff != "" {
			t.Errorf("flags mismatch (-want +got):\n%s", diff)
		}

		sh, err := NewShell(cfg)
		require.NoError(t, err)
		assert.Equal(t, "2.0.0", sh.Version())
		assert.Equal(t, "us-east", sh.Plugins()["region"])
		require.NotNil(t, sh.GetCommand("a create"))
		assert.Equal(t, "account create", sh.GetCommand("acct create").Path())
	})
	t.Run("unknown keys are rejected", func(t *testing.T) {
		t.Parallel()
		_, err := LoadShellConfig([]byte("name: mycli\nnmae: typo\n"))
		require.Error(t, err)
		assert.True(t, IsCode(err, ErrConfiguration))
	})
	t.Run("unknown keys in nested commands are rejected", func(t *testing.T) {
		t.Parallel()
		_, err := LoadShellConfig([]byte("name: mycli\ncommands:\n  account:\n    hanlder: x\n"))
		require.Error(t, err)
		assert.True(t, IsCode(err, ErrConfiguration))
	})
	t.Run("commands must be a list or mapping", func(t *testing.T) {
		t.Parallel()
		_, err := LoadShellConfig([]byte("name: mycli\ncommands: 5\n"))
		require.Error(t, err)
	})
}

func TestLoadConfig(t *testing.T) {
	t.Parallel()

	cfg, err := LoadConfig([]byte(`
name: account
aliases: [acct, a]
arguments:
  - email
  - displayName
disableHelp: true
subcommands:
  - name: list
`))
	require.NoError(t, err)
	assert.Equal(t, List{"acct", "a"}, cfg.Aliases)
	assert.Equal(t, List{"email", "displayName"}, cfg.Arguments)
	assert.True(t, cfg.DisableHelp)
	require.Len(t, cfg.Subcommands, 1)

	cmd, err := NewCommand(cfg)
	require.NoError(t, err)
	assert.False(t, cmd.HelpEnabled())
	assert.NotNil(t, cmd.GetCommand("list"))
}

func TestFields(t *testing.T) {
	t.Parallel()

	assert.Equal(t, List{"email", "displayName", "org"}, Fields(" email, displayName\torg "))
	assert.Empty(t, Fields(" , "))
}
