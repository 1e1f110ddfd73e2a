package shell

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestShell(t *testing.T, cfg ShellConfig) (*Shell, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	stdout, stderr := new(bytes.Buffer), new(bytes.Buffer)
	cfg.Stdout, cfg.Stderr = stdout, stderr
	return mustShell(t, cfg), stdout, stderr
}

func returnData(key string) HandlerFunc {
	return func(_ context.Context, m *Meta) (any, error) {
		return m.Data[key], nil
	}
}

func returnInput(_ context.Context, m *Meta) (any, error) {
	return m.Input, nil
}

func TestExec(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	accountConfig := func() ShellConfig {
		return ShellConfig{
			Name: "mycli",
			Commands: Commands{{
				Name:        "account",
				Alias:       List{"acct"},
				Description: "Manage accounts.",
				Handler:     returnInput,
				Commands: Commands{
					{Name: "create", Alias: List{"c"}, Arguments: Fields("email displayName"), Handler: returnData("email")},
					{Name: "list", Handler: returnInput},
				},
			}},
		}
	}

	t.Run("resolves nested commands and aliases", func(t *testing.T) {
		t.Parallel()
		sh, _, _ := newTestShell(t, accountConfig())
		out, err := sh.Exec(ctx, "account create bob@example.com")
		require.NoError(t, err)
		assert.Equal(t, "bob@example.com", out)

		out, err = sh.Exec(ctx, "  acct   c   me@example.com  ")
		require.NoError(t, err)
		assert.Equal(t, "me@example.com", out)
	})
	t.Run("walk stops at the first unknown token", func(t *testing.T) {
		t.Parallel()
		sh, _, _ := newTestShell(t, accountConfig())
		out, err := sh.Exec(ctx, "account bob list")
		require.NoError(t, err)
		assert.Equal(t, "bob list", out)
	})
	t.Run("unknown command", func(t *testing.T) {
		t.Parallel()
		sh, _, stderr := newTestShell(t, accountConfig())
		out, err := sh.Exec(ctx, "acount create")
		require.Error(t, err)
		assert.Nil(t, out)
		assert.True(t, IsCode(err, ErrResolution))

		var rerr *ResolutionError
		require.True(t, errors.As(err, &rerr))
		assert.Equal(t, "acount", rerr.Token)
		assert.Equal(t, []string{"account"}, rerr.Suggestions)
		assert.Contains(t, stderr.String(), `error: unknown command "acount". Did you mean one of these?`)
		assert.Contains(t, stderr.String(), sh.Help())
	})
	t.Run("empty input", func(t *testing.T) {
		t.Parallel()
		sh, _, _ := newTestShell(t, accountConfig())
		_, err := sh.Exec(ctx, "   ")
		require.Error(t, err)
		assert.EqualError(t, err, "no command specified")
	})
	t.Run("help and version", func(t *testing.T) {
		t.Parallel()
		sh, stdout, _ := newTestShell(t, accountConfig())
		out, err := sh.Exec(ctx, "help")
		require.NoError(t, err)
		assert.Equal(t, sh.Help(), out)
		assert.Equal(t, sh.Help()+"\n", stdout.String())

		stdout.Reset()
		out, err = sh.Exec(ctx, "--version")
		require.NoError(t, err)
		assert.Equal(t, "1.0.0", out)
		assert.Equal(t, "1.0.0\n", stdout.String())
	})
	t.Run("commands shadow builtins", func(t *testing.T) {
		t.Parallel()
		cfg := accountConfig()
		cfg.Commands = append(cfg.Commands, Config{Name: "version", Handler: func(context.Context, *Meta) (any, error) {
			return "mine", nil
		}})
		sh, _, _ := newTestShell(t, cfg)
		out, err := sh.Exec(ctx, "version")
		require.NoError(t, err)
		assert.Equal(t, "mine", out)
	})
	t.Run("help builtin is disabled with help", func(t *testing.T) {
		t.Parallel()
		cfg := accountConfig()
		cfg.DisableHelp = true
		sh, _, _ := newTestShell(t, cfg)
		_, err := sh.Exec(ctx, "help")
		assert.True(t, IsCode(err, ErrResolution))
	})
	t.Run("command help is idempotent", func(t *testing.T) {
		t.Parallel()
		sh, stdout, _ := newTestShell(t, accountConfig())
		first, err := sh.Exec(ctx, "account --help")
		require.NoError(t, err)
		second, err := sh.Exec(ctx, "account -help")
		require.NoError(t, err)
		assert.Equal(t, first, second)
		assert.Equal(t, sh.GetCommand("account").Help(), first)
		assert.Equal(t, fmt.Sprintf("%s\n%s\n", first, first), stdout.String())
		assert.Equal(t, sh.Help(), sh.Help())
	})
	t.Run("exec args quotes whitespace", func(t *testing.T) {
		t.Parallel()
		cfg := accountConfig()
		cfg.Commands[0].Commands[0].Handler = returnData("displayName")
		sh, _, _ := newTestShell(t, cfg)
		out, err := sh.ExecArgs(ctx, []string{"account", "create", "bob@example.com", "Bob Smith"})
		require.NoError(t, err)
		assert.Equal(t, "Bob Smith", out)

		for _, name := range []string{`C:\My Files\bob`, `say "hi"`, `D:\x`} {
			out, err = sh.ExecArgs(ctx, []string{"account", "create", "bob@example.com", name})
			require.NoError(t, err)
			assert.Equal(t, name, out)
		}
	})
}

func TestJoinArgs(t *testing.T) {
	t.Parallel()

	got := JoinArgs([]string{"account", "create", "Bob Smith", "--name=John Doe", "", `say "hi" now`, "'kept as is'"})
	assert.Equal(t, `account create "Bob Smith" --name="John Doe" "" "say \"hi\" now" 'kept as is'`, got)
	assert.Equal(t, `copy "C:\My Files" --dest="D:\a b"`, JoinArgs([]string{"copy", `C:\My Files`, `--dest=D:\a b`}))
}

func TestRun(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("middleware order", func(t *testing.T) {
		t.Parallel()
		var (
			mu  sync.Mutex
			log []string
		)
		record := func(name string) MiddlewareFunc {
			return func(m *Meta, next func()) {
				mu.Lock()
				log = append(log, name)
				mu.Unlock()
				next()
			}
		}
		sh, _, _ := newTestShell(t, ShellConfig{
			Name: "mycli",
			Use:  []MiddlewareFunc{record("shell")},
			Commands: Commands{{
				Name:    "account",
				Use:     []MiddlewareFunc{record("account")},
				Trailer: []MiddlewareFunc{record("account trailer")},
				Commands: Commands{{
					Name:    "create",
					Use:     []MiddlewareFunc{record("create")},
					Trailer: []MiddlewareFunc{record("create trailer")},
					Handler: func(context.Context, *Meta) (any, error) {
						record("handler")(nil, func() {})
						return nil, nil
					},
				}},
			}},
		})
		sh.UseWith([]string{"account create"}, record("with"))
		sh.UseWith([]string{"acc"}, record("with prefix"))
		sh.UseExcept([]string{"account"}, record("except"))
		assert.Equal(t, 4, sh.MiddlewareSize())
		create := sh.GetCommand("account create")
		assert.Equal(t, 1, create.TrailerSize())
		assert.True(t, create.HasHandler())
		assert.False(t, sh.GetCommand("account").HasHandler())

		_, err := sh.Exec(ctx, "account create bob")
		require.NoError(t, err)
		assert.Equal(t, []string{"shell", "with", "account", "create", "handler", "create trailer"}, log)
	})
	t.Run("middleware shares meta with the handler", func(t *testing.T) {
		t.Parallel()
		sh, _, _ := newTestShell(t, ShellConfig{
			Name: "mycli",
			Commands: Commands{{
				Name:    "account",
				Use:     []MiddlewareFunc{func(m *Meta, next func()) { m.Data["user"] = "bob"; next() }},
				Handler: returnData("user"),
			}},
		})
		out, err := sh.Exec(ctx, "account")
		require.NoError(t, err)
		assert.Equal(t, "bob", out)
	})
	t.Run("halted chain", func(t *testing.T) {
		t.Parallel()
		var handled, trailed bool
		sh, _, _ := newTestShell(t, ShellConfig{
			Name: "mycli",
			Commands: Commands{{
				Name:    "account",
				Use:     []MiddlewareFunc{func(*Meta, func()) {}},
				Trailer: []MiddlewareFunc{func(_ *Meta, next func()) { trailed = true; next() }},
				Handler: func(context.Context, *Meta) (any, error) {
					handled = true
					return nil, nil
				},
			}},
		})
		_, err := sh.Exec(ctx, "account")
		require.ErrorIs(t, err, ErrHalted)
		assert.False(t, handled)
		assert.True(t, trailed)
	})
	t.Run("handler errors are returned", func(t *testing.T) {
		t.Parallel()
		boom := errors.New("boom")
		sh, _, _ := newTestShell(t, ShellConfig{
			Name: "mycli",
			Commands: Commands{{
				Name:    "account",
				Handler: func(context.Context, *Meta) (any, error) { return nil, boom },
			}},
		})
		_, err := sh.Exec(ctx, "account")
		require.ErrorIs(t, err, boom)
	})
	t.Run("default handler", func(t *testing.T) {
		t.Parallel()
		sh, _, _ := newTestShell(t, ShellConfig{
			Name:           "mycli",
			DefaultHandler: func(_ context.Context, m *Meta) (any, error) { return "default " + m.Command().Name(), nil },
			Commands:       Commands{{Name: "account"}},
		})
		out, err := sh.Exec(ctx, "account")
		require.NoError(t, err)
		assert.Equal(t, "default account", out)
	})
	t.Run("commands without a handler print help", func(t *testing.T) {
		t.Parallel()
		sh, stdout, _ := newTestShell(t, ShellConfig{
			Name:     "mycli",
			Commands: Commands{{Name: "account", Description: "Manage accounts."}},
		})
		out, err := sh.Exec(ctx, "account")
		require.NoError(t, err)
		assert.Equal(t, sh.GetCommand("account").Help(), out)
		assert.Equal(t, out.(string)+"\n", stdout.String())

		account := sh.GetCommand("account")
		account.Handle(returnInput)
		assert.True(t, account.HasHandler())
		out, err = sh.Exec(ctx, "account bob")
		require.NoError(t, err)
		assert.Equal(t, "bob", out)
	})
	t.Run("common flags reach descendants", func(t *testing.T) {
		t.Parallel()
		sh, _, _ := newTestShell(t, ShellConfig{
			Name: "mycli",
			CommonFlags: CommonFlags{
				Flags: map[string]Flag{"verbose": {Alias: "v", Type: TypeBoolean}},
			},
			Commands: Commands{{
				Name: "account",
				Commands: Commands{{
					Name:    "create",
					Handler: func(_ context.Context, m *Meta) (any, error) { return m, nil },
				}},
			}},
		})
		out, err := sh.Exec(ctx, "account create -v bob")
		require.NoError(t, err)
		m := out.(*Meta)
		require.Contains(t, m.Flags.Recognized, "verbose")
		assert.Equal(t, true, m.Flags.Recognized["verbose"])
		assert.Equal(t, true, m.Data["verbose"])
		assert.Equal(t, map[string]string{"verbose": "v"}, m.Parsed)
		assert.Equal(t, []string{"bob"}, m.Flags.Unrecognized)

		out, err = sh.Exec(ctx, "account create")
		require.NoError(t, err)
		m = out.(*Meta)
		require.Contains(t, m.Flags.Recognized, "verbose")
		assert.Nil(t, m.Flags.Recognized["verbose"])
	})
	t.Run("dispatch logs to the shell logger", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
		sh, _, _ := newTestShell(t, ShellConfig{
			Name:     "mycli",
			Logger:   logger,
			Commands: Commands{{Name: "account", Handler: returnInput}},
		})
		assert.Same(t, logger, sh.Logger())

		_, err := sh.Exec(ctx, "account bob")
		require.NoError(t, err)
		assert.Contains(t, buf.String(), "msg=dispatch")
		assert.Contains(t, buf.String(), `command="mycli account"`)

		_, err = sh.Exec(ctx, "nope")
		require.Error(t, err)
		assert.Contains(t, buf.String(), `msg="command not found"`)
	})
	t.Run("plugins resolve through the tree", func(t *testing.T) {
		t.Parallel()
		type seen struct{ meta, parent, shell any }
		var got seen
		sh, _, _ := newTestShell(t, ShellConfig{
			Name:    "mycli",
			Plugins: map[string]any{"db": "shell"},
			Commands: Commands{{
				Name:    "account",
				Plugins: map[string]any{"db": "account"},
				Commands: Commands{{
					Name: "create",
					Handler: func(_ context.Context, m *Meta) (any, error) {
						got = seen{
							meta:   m.Plugins["db"],
							parent: m.Command().Parent().Plugins()["db"],
							shell:  m.Shell().Plugins()["db"],
						}
						return nil, nil
					},
				}},
			}},
		})
		_, err := sh.Exec(ctx, "account create")
		require.NoError(t, err)
		assert.Equal(t, seen{meta: "account", parent: "account", shell: "shell"}, got)
	})
	t.Run("violations do not stop the handler", func(t *testing.T) {
		t.Parallel()
		sh, _, _ := newTestShell(t, ShellConfig{
			Name: "mycli",
			Commands: Commands{{
				Name:  "account",
				Flags: map[string]Flag{"email": {Required: true}},
				Handler: func(_ context.Context, m *Meta) (any, error) {
					return m.Violations, nil
				},
			}},
		})
		out, err := sh.Exec(ctx, "account")
		require.NoError(t, err)
		assert.Equal(t, []string{`required flag "email" not set`}, out)
	})
	t.Run("standalone command", func(t *testing.T) {
		t.Parallel()
		cmd := mustCommand(t, Config{
			Name:      "echo",
			Arguments: Fields("text"),
			Handler:   returnData("text"),
		})
		out, err := cmd.Run(ctx, `"hello world"`)
		require.NoError(t, err)
		assert.Equal(t, "hello world", out)
	})
	t.Run("concurrent dispatch", func(t *testing.T) {
		t.Parallel()
		sh, _, _ := newTestShell(t, ShellConfig{
			Name:     "mycli",
			Commands: Commands{{Name: "account", Arguments: Fields("n"), Handler: returnData("n")}},
		})
		var wg sync.WaitGroup
		results := make([]any, 20)
		for i := range results {
			wg.Add(1)
			go func() {
				defer wg.Done()
				out, err := sh.Exec(ctx, fmt.Sprintf("account %d", i))
				assert.NoError(t, err)
				results[i] = out
			}()
		}
		wg.Wait()
		for i, out := range results {
			assert.Equal(t, fmt.Sprint(i), out)
		}
		assert.Len(t, sh.History(0), 20)
	})
}
