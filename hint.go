package shell

import (
	"cmp"
	"slices"
	"strings"
	"unicode"

	"github.com/sahilm/fuzzy"
)

// Hint is an autocomplete suggestion for partial input.
type Hint struct {
	// Input is the partial token the suggestions complete.
	Input    string
	Commands []Match
	Flags    []Match
}

// Match is a candidate command or flag name. Start and End delimit the matched span of Name,
// [Start, End).
type Match struct {
	Name  string
	Start int
	End   int
}

// Hint suggests command names and flag names for the trailing token of partial input. The tokens
// before it must resolve to a command path, otherwise Hint returns nil. A token starting with a
// dash is completed against flags only. Hint also returns nil when nothing matches.
func (s *Shell) Hint(partial string) *Hint {
	body := strings.TrimLeftFunc(partial, unicode.IsSpace)
	if body == "" {
		return nil
	}
	prefix, word := "", body
	if i := strings.LastIndexFunc(body, unicode.IsSpace); i >= 0 {
		prefix, word = body[:i], body[i+1:]
	}

	var (
		commands []string
		flags    []string
	)
	if prefix == "" {
		commands = s.commands.keys()
	} else {
		tokens := strings.Fields(prefix)
		root := s.commands.lookup(tokens[0])
		if root == nil {
			return nil
		}
		target, args := root.terminal(strings.Join(tokens[1:], " "))
		if args == "" {
			commands = target.commands.keys()
		}
		schema := target.flagConfig()
		for pair := schema.Oldest(); pair != nil; pair = pair.Next() {
			flags = append(flags, pair.Key)
			flags = append(flags, pair.Value.Aliases...)
		}
	}

	h := &Hint{Input: word}
	if strings.HasPrefix(word, "-") {
		h.Input = strings.TrimLeft(word, "-")
		h.Flags = match(h.Input, flags)
	} else {
		h.Commands = match(word, commands)
		h.Flags = match(word, flags)
	}
	if len(h.Commands) == 0 && len(h.Flags) == 0 {
		return nil
	}
	return h
}

func match(word string, candidates []string) []Match {
	if len(candidates) == 0 {
		return nil
	}
	if word == "" {
		out := make([]Match, 0, len(candidates))
		for _, c := range candidates {
			out = append(out, Match{Name: c})
		}
		return out
	}
	var out []Match
	for _, m := range fuzzy.Find(word, candidates) {
		if len(m.MatchedIndexes) == 0 {
			continue
		}
		out = append(out, Match{
			Name:  m.Str,
			Start: m.MatchedIndexes[0],
			End:   m.MatchedIndexes[len(m.MatchedIndexes)-1] + 1,
		})
	}
	slices.SortStableFunc(out, func(a, b Match) int {
		return cmp.Compare(a.Start, b.Start)
	})
	return out
}
