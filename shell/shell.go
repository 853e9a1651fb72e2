package shell

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"syscall"

	"github.com/chzyer/readline"
	"github.com/kballard/go-shellquote"
	"github.com/rs/zerolog/log"

	"github.com/domino14/plybot/config"
	"github.com/domino14/plybot/search"
	"github.com/domino14/plybot/tictactoe"
)

// tttDriver is the engine instantiated for the game the shell plays.
type tttDriver = search.Driver[tictactoe.State, tictactoe.Move, tictactoe.Player]

var (
	errNoData            = errors.New("no data in command")
	errWrongOptionSyntax = errors.New("options need to be in the form -option value")
	errExiting           = errors.New("sending quit signal")
	errNoGame            = errors.New("please start a game first with the `new` command")
)

type ShellController struct {
	l      *readline.Instance
	config *config.Config
	writer io.Writer

	driver   *tttDriver
	cycleLog *os.File
}

type Response struct {
	message string
}

func msg(message string) *Response {
	return &Response{message: message}
}

type CmdOptions map[string][]string

func (c CmdOptions) String(key string) string {
	v := c[key]
	if len(v) > 0 {
		return v[0]
	}
	return ""
}

func (c CmdOptions) Int(key string) (int, error) {
	v := c[key]
	if len(v) == 0 {
		return 0, errors.New(key + " not found in options")
	}
	return strconv.Atoi(v[0])
}

func (c CmdOptions) IntDefault(key string, defaultI int) (int, error) {
	v := c[key]
	if len(v) == 0 {
		return defaultI, nil
	}
	return strconv.Atoi(v[0])
}

func (c CmdOptions) Bool(key string) bool {
	v := c[key]
	if len(v) == 0 {
		return false
	}
	return strings.ToLower(v[0]) == "true"
}

type shellcmd struct {
	cmd     string
	args    []string
	options CmdOptions
}

func extractFields(line string) (*shellcmd, error) {
	fields, err := shellquote.Split(line)
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, errNoData
	}
	cmd := fields[0]
	var args []string
	options := CmdOptions{}
	lastWasOption := false
	lastOption := ""
	for _, field := range fields[1:] {
		if strings.HasPrefix(field, "-") {
			lastWasOption = true
			lastOption = field[1:]
			continue
		}
		if lastWasOption {
			options[lastOption] = append(options[lastOption], field)
			lastWasOption = false
		} else {
			args = append(args, field)
		}
	}
	if lastWasOption {
		return nil, errWrongOptionSyntax
	}
	return &shellcmd{cmd: cmd, args: args, options: options}, nil
}

func filterInput(r rune) (rune, bool) {
	switch r {
	// block CtrlZ feature
	case readline.CharCtrlZ:
		return r, false
	}
	return r, true
}

func writeln(msg string, w io.Writer) {
	io.WriteString(w, msg)
	io.WriteString(w, "\n")
}

func NewShellController(cfg *config.Config) *ShellController {
	sc := &ShellController{config: cfg}
	if path := cfg.GetString(config.ConfigCycleLog); path != "" {
		f, err := os.Create(path)
		if err != nil {
			log.Err(err).Str("file", path).Msg("opening-cycle-log")
		} else {
			sc.cycleLog = f
		}
	}

	l, err := readline.NewEx(&readline.Config{
		Prompt:          "\033[31mplybot>\033[0m ",
		HistoryFile:     "/tmp/plybot_readline.tmp",
		EOFPrompt:       "exit",
		InterruptPrompt: "^C",

		HistorySearchFold:   true,
		FuncFilterInputRune: filterInput,
		AutoComplete:        NewShellCompleter(sc),
	})
	if err != nil {
		panic(err)
	}
	sc.l = l
	sc.writer = l.Stderr()
	return sc
}

func (sc *ShellController) showMessage(msg string) {
	writeln(msg, sc.writer)
}

func (sc *ShellController) showError(err error) {
	sc.showMessage("Error: " + err.Error())
}

// Cleanup closes anything the shell left open.
func (sc *ShellController) Cleanup() {
	if sc.cycleLog != nil {
		if err := sc.cycleLog.Close(); err != nil {
			log.Err(err).Msg("closing-cycle-log")
		}
		sc.cycleLog = nil
	}
}

func (sc *ShellController) standardModeSwitch(line string, sig chan os.Signal) (*Response, error) {
	cmd, err := extractFields(line)
	if err != nil {
		return nil, err
	}
	switch cmd.cmd {
	case "new":
		return sc.newGame(cmd)
	case "show", "s":
		return sc.show(cmd)
	case "moves", "list":
		return sc.moves(cmd)
	case "play":
		return sc.play(cmd)
	case "engine":
		return sc.engine(cmd)
	case "auto":
		return sc.auto(cmd)
	case "score":
		return sc.score(cmd)
	case "tree":
		return sc.treeStats(cmd)
	case "set":
		return sc.set(cmd)
	case "budget":
		return sc.budget(cmd)
	case "log":
		return sc.cycleLogCmd(cmd)
	case "autoplay":
		return sc.autoplayCmd(cmd)
	case "help":
		return sc.help(cmd)
	case "exit", "bye", "quit":
		sig <- syscall.SIGINT
		return nil, errExiting
	default:
		log.Info().Msgf("you said: %v", strconv.Quote(line))
		return nil, nil
	}
}

func (sc *ShellController) Loop(sig chan os.Signal) {
	defer sc.l.Close()

	for {
		line, err := sc.l.Readline()
		if err == readline.ErrInterrupt {
			if len(line) == 0 {
				sig <- syscall.SIGINT
				break
			} else {
				continue
			}
		} else if err == io.EOF {
			sig <- syscall.SIGINT
			break
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		resp, err := sc.standardModeSwitch(line, sig)
		if err == errExiting {
			break
		}
		if err != nil {
			sc.showError(err)
			continue
		}
		if resp != nil {
			sc.showMessage(resp.message)
		}
	}
	log.Debug().Msgf("Exiting readline loop...")
}

// Execute runs a single command line and returns, for one-shot invocations
// from the command line.
func (sc *ShellController) Execute(sig chan os.Signal, line string) {
	defer sc.l.Close()
	resp, err := sc.standardModeSwitch(line, sig)
	if err != nil && err != errExiting {
		sc.showError(err)
		return
	}
	if resp != nil {
		sc.showMessage(resp.message)
	}
}

// moveTableRow renders one candidate move with its score for the player on
// turn, or a ? when the tree has not scored that line yet.
func moveTableRow(idx int, mv tictactoe.Move, score string) string {
	return fmt.Sprintf("%3d: %-8s%-8s", idx+1, mv.String(), score)
}
