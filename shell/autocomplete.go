package shell

import (
	"strings"

	"github.com/kballard/go-shellquote"

	"github.com/domino14/plybot/search"
)

// ShellCompleter provides context-aware autocomplete for shell commands
type ShellCompleter struct {
	sc *ShellController
}

func NewShellCompleter(sc *ShellController) *ShellCompleter {
	return &ShellCompleter{sc: sc}
}

// CommandMetadata holds autocomplete information for a command
type CommandMetadata struct {
	Options []string // Available options for this command (e.g., "-games", "-threads")
	Args    []string // Possible argument values (for non-option arguments)
}

var selectorNames = []string{
	search.SelectorFirst, search.SelectorRandom, search.SelectorBestRandom,
}

// commandMetadata maps command names to their options and arguments
var commandMetadata = map[string]CommandMetadata{
	"set": {
		Args: settableKeys,
	},
	"autoplay": {
		Options: []string{"-games", "-threads", "-random-seating"},
		Args:    selectorNames,
	},
	"log": {
		Args: []string{"stop"},
	},
}

// Common command names for command completion
var commandNames = []string{
	"new", "show", "moves", "play", "engine", "auto", "score", "tree",
	"set", "budget", "log", "autoplay", "help", "exit",
}

var boolValues = []string{"true", "false"}

// Do implements the readline.AutoComplete interface
func (c *ShellCompleter) Do(line []rune, pos int) ([][]rune, int) {
	text := string(line[:pos])

	fields, err := shellquote.Split(text)
	if err != nil {
		fields = strings.Fields(text)
	}

	endsWithSpace := len(text) > 0 && text[len(text)-1] == ' '

	var prefix string
	var completions []string

	if len(fields) == 0 || (len(fields) == 1 && !endsWithSpace) {
		// Completing a command name
		if len(fields) == 1 {
			prefix = fields[0]
		}
		completions = commandNames
	} else {
		cmdName := fields[0]

		if !endsWithSpace && len(fields) > 0 {
			prefix = fields[len(fields)-1]
		}

		var lastCompleteField string
		if endsWithSpace && len(fields) > 0 {
			lastCompleteField = fields[len(fields)-1]
		} else if len(fields) > 1 {
			lastCompleteField = fields[len(fields)-2]
		}

		// Option values with a known vocabulary.
		if lastCompleteField != "" && strings.HasPrefix(lastCompleteField, "-") {
			switch strings.TrimPrefix(lastCompleteField, "-") {
			case "random-seating":
				completions = boolValues
			}
		}

		// Values for `set <key> `.
		if cmdName == "set" && completions == nil && lastCompleteField != "" &&
			!strings.HasPrefix(lastCompleteField, "-") {
			switch lastCompleteField {
			case "strategy":
				completions = []string{search.StrategyCurrent, search.StrategyOneStep}
			case "control":
				completions = []string{search.ControlOnce, search.ControlFull, search.ControlBounded}
			case "selector":
				completions = selectorNames
			case "pruning":
				completions = []string{search.PruningNone, search.PruningReachable}
			case "debug":
				completions = boolValues
			}
		}

		if completions == nil {
			if metadata, exists := commandMetadata[cmdName]; exists {
				if strings.HasPrefix(prefix, "-") {
					completions = metadata.Options
				} else if len(metadata.Args) > 0 {
					completions = metadata.Args
				} else {
					completions = metadata.Options
				}
			}
		}
	}

	var matches [][]rune
	for _, completion := range completions {
		if strings.HasPrefix(completion, prefix) {
			matches = append(matches, []rune(completion[len(prefix):]))
		}
	}
	return matches, len(prefix)
}
