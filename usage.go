package shell

import (
	"fmt"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/mfridman/shell/pkg/textutil"
)

// Description returns the command's description, falling back to its usage line.
func (c *Command) Description() string {
	if c.description != "" {
		return c.description
	}
	return c.Usage()
}

// Usage returns the command's usage line, e.g. "mycli account create [flags] <email>".
func (c *Command) Usage() string {
	if c.usage != "" {
		return c.usage
	}
	usage := c.CommandRoot()
	if len(c.flags) > 0 || c.commonFlags().Len() > 0 {
		usage += " [flags]"
	}
	for _, a := range c.arguments {
		usage += " <" + a + ">"
	}
	if c.commands.byID.Len() > 0 {
		usage += " <command>"
	}
	return usage
}

// Help returns the command's help text. Custom help, from Config.Help or Config.HelpFunc, is
// returned as is; generated help is empty when help is disabled for the command.
func (c *Command) Help() string {
	if c.helpFunc != nil {
		return c.helpFunc(c)
	}
	if c.help != "" {
		return c.help
	}
	if !c.HelpEnabled() {
		return ""
	}
	width := defaultTableWidth
	if s := c.Shell(); s != nil {
		width = s.tableWidth
	}

	var b strings.Builder
	if c.description != "" {
		for _, line := range textutil.Wrap(c.description, width) {
			b.WriteString(line)
			b.WriteRune('\n')
		}
		b.WriteRune('\n')
	}

	b.WriteString("Usage:\n  " + c.Usage() + "\n\n")

	if len(c.aliases) > 0 {
		b.WriteString("Aliases:\n  " + strings.Join(c.aliases, ", ") + "\n\n")
	}

	writeCommands(&b, c.Commands(), width)

	var local, global []row
	inherited := c.commonFlags()
	schema := c.flagConfig()
	for pair := schema.Oldest(); pair != nil; pair = pair.Next() {
		r := flagRow(pair.Key, pair.Value)
		_, own := c.flags[pair.Key]
		if _, ok := inherited.Get(pair.Key); ok && !own {
			global = append(global, r)
			continue
		}
		local = append(local, r)
	}
	if len(local) > 0 {
		b.WriteString("Flags:\n")
		writeRows(&b, local, width)
		b.WriteRune('\n')
	}
	if len(global) > 0 {
		b.WriteString("Global Flags:\n")
		writeRows(&b, global, width)
		b.WriteRune('\n')
	}

	if c.commands.byID.Len() > 0 {
		fmt.Fprintf(&b, "Use \"%s [command] --help\" for more information about a command.\n", c.CommandRoot())
	}
	writeContact(&b, c.URL(), c.Support())
	return strings.TrimRight(b.String(), "\n")
}

// Description returns the shell's description.
func (s *Shell) Description() string {
	if s.description != "" {
		return s.description
	}
	return s.Usage()
}

// Usage returns the shell's usage line.
func (s *Shell) Usage() string {
	if s.usage != "" {
		return s.usage
	}
	usage := s.name
	if s.commands.byID.Len() > 0 {
		usage += " <command>"
	}
	if len(s.common.Flags) > 0 {
		usage += " [flags]"
	}
	return usage
}

// Help returns the shell's help text, listing the top-level commands.
func (s *Shell) Help() string {
	if s.helpFunc != nil {
		return s.helpFunc(s)
	}
	if s.help != "" {
		return s.help
	}
	if !s.autohelp {
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n\n", s.name, s.version)
	if s.description != "" {
		lines := textutil.Wrap(s.description, s.tableWidth-s.tabWidth)
		b.WriteString(textutil.Indent(strings.Join(lines, "\n"), s.tabWidth) + "\n\n")
	}
	b.WriteString("Usage:\n  " + s.Usage() + "\n\n")
	writeCommands(&b, s.Commands(), s.tableWidth)

	if len(s.common.Flags) > 0 {
		schema := orderedmap.New[string, Flag]()
		mergeSorted(schema, s.common.Flags)
		var rows []row
		for pair := schema.Oldest(); pair != nil; pair = pair.Next() {
			rows = append(rows, flagRow(pair.Key, pair.Value))
		}
		b.WriteString("Global Flags:\n")
		writeRows(&b, rows, s.tableWidth)
		b.WriteRune('\n')
	}
	if s.commands.byID.Len() > 0 {
		fmt.Fprintf(&b, "Use \"%s [command] --help\" for more information about a command.\n", s.name)
	}
	writeContact(&b, s.URL(), s.Support())
	return strings.TrimRight(b.String(), "\n")
}

type row struct {
	name string
	text string
}

func flagRow(name string, f Flag) row {
	names := []string{"-" + name}
	for _, a := range f.Aliases {
		names = append(names, "-"+a)
	}
	text := f.Description
	if f.Type != TypeString && f.Type != TypeBoolean {
		text = strings.TrimSpace(text + " (" + string(f.Type) + ")")
	}
	if len(f.Options) > 0 {
		text += " Options: " + strings.Join(f.Options, ", ") + "."
	}
	if f.Default != nil && fmt.Sprint(f.Default) != "" && f.Default != false {
		text += fmt.Sprintf(" (default: %v)", f.Default)
	}
	if f.Required {
		text += " (required)"
	}
	if f.AllowMultipleValues {
		text += " (repeatable)"
	}
	return row{name: strings.Join(names, ", "), text: strings.TrimSpace(text)}
}

func writeCommands(b *strings.Builder, cmds []*Command, width int) {
	if len(cmds) == 0 {
		return
	}
	rows := make([]row, 0, len(cmds))
	for _, sub := range cmds {
		name := sub.name
		if len(sub.aliases) > 0 {
			name += " [" + strings.Join(sub.aliases, ", ") + "]"
		}
		text := sub.description
		if n := sub.commands.byID.Len(); n > 0 {
			text = strings.TrimSpace(fmt.Sprintf("%s Has %d subcommand%s.", text, n, plural(n)))
		}
		rows = append(rows, row{name: name, text: text})
	}
	b.WriteString("Available Commands:\n")
	writeRows(b, rows, width)
	b.WriteRune('\n')
}

// writeRows writes a two column table, wrapping the second column.
func writeRows(b *strings.Builder, rows []row, width int) {
	maxLen := 0
	for _, r := range rows {
		maxLen = max(maxLen, len(r.name))
	}
	nameWidth := maxLen + 4
	wrapWidth := max(width-nameWidth, 20)

	for _, r := range rows {
		lines := textutil.Wrap(r.text, wrapWidth)
		if len(lines) == 0 {
			fmt.Fprintf(b, "  %s\n", r.name)
			continue
		}
		padding := strings.Repeat(" ", maxLen-len(r.name)+4)
		fmt.Fprintf(b, "  %s%s%s\n", r.name, padding, lines[0])

		indentPadding := strings.Repeat(" ", nameWidth+2)
		for _, line := range lines[1:] {
			fmt.Fprintf(b, "%s%s\n", indentPadding, line)
		}
	}
}

func writeContact(b *strings.Builder, url, support string) {
	if url == "" && support == "" {
		return
	}
	b.WriteRune('\n')
	if url != "" {
		fmt.Fprintf(b, "More information: %s\n", url)
	}
	if support != "" {
		fmt.Fprintf(b, "Support: %s\n", support)
	}
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
