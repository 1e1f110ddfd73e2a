// Package shell provides a command tree for building command-line applications and interactive
// shells. Input is resolved greedily through nested commands, parsed against the command's flag
// schema, and run through middleware before reaching the command's handler.
//
// A [Shell] owns the top-level commands, shell-wide common flags, middleware and plugins, and a
// bounded input history. Commands are configured with [Config], either as Go literals or loaded
// from YAML with [LoadConfig] and [LoadShellConfig]:
//
//	sh, err := shell.NewShell(shell.ShellConfig{
//		Name: "mycli",
//		Commands: shell.Commands{{
//			Name:      "account",
//			Arguments: shell.Fields("email displayName"),
//			Flags: map[string]shell.Flag{
//				"admin": {Alias: "a", Type: shell.TypeBoolean},
//			},
//			Handler: func(ctx context.Context, m *shell.Meta) (any, error) {
//				return m.Data["email"], nil
//			},
//		}},
//	})
//	if err != nil {
//		return err
//	}
//	out, err := sh.Exec(ctx, "account bob@example.com --admin")
//
// Handlers and middleware receive a [Meta] describing the parsed input. Use [GetFlag] for typed
// access to flag values.
package shell
