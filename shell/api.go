package shell

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"github.com/domino14/plybot/autoplay"
	"github.com/domino14/plybot/config"
	"github.com/domino14/plybot/search"
	"github.com/domino14/plybot/tictactoe"
)

// settableKeys are the config keys `set` accepts. Profiling paths and the
// cycle log have their own surfaces.
var settableKeys = []string{
	config.ConfigDebug,
	config.ConfigTimeLimit,
	config.ConfigNodeLimit,
	config.ConfigSearchDepth,
	config.ConfigStrategy,
	config.ConfigControl,
	config.ConfigSelector,
	config.ConfigPruning,
	config.ConfigMaxTableFraction,
	config.ConfigAutoplayGames,
}

// applyPolicies rebuilds the driver's policy set from the current config.
func (sc *ShellController) applyPolicies(d *tttDriver) error {
	control, err := search.BuildControl[tictactoe.State, tictactoe.Move, tictactoe.Player](
		sc.config.GetString(config.ConfigControl),
		sc.config.GetString(config.ConfigStrategy),
		sc.config.TimeLimit(),
		sc.config.GetInt(config.ConfigNodeLimit),
		sc.config.GetInt(config.ConfigSearchDepth),
	)
	if err != nil {
		return err
	}
	selector, err := search.SelectorByName[tictactoe.State, tictactoe.Move, tictactoe.Player](
		sc.config.GetString(config.ConfigSelector))
	if err != nil {
		return err
	}
	pruner, err := search.PrunerByName[tictactoe.State, tictactoe.Move, tictactoe.Player](
		sc.config.GetString(config.ConfigPruning))
	if err != nil {
		return err
	}
	d.SetExpansionControl(control)
	d.SetMoveSelector(selector)
	d.SetPruningPolicy(pruner)
	return nil
}

func (sc *ShellController) newDriver() (*tttDriver, error) {
	d, err := search.NewDriver[tictactoe.State, tictactoe.Move, tictactoe.Player](tictactoe.Rules{})
	if err != nil {
		return nil, err
	}
	if err := sc.applyPolicies(d); err != nil {
		return nil, err
	}
	return d, nil
}

func (sc *ShellController) newGame(cmd *shellcmd) (*Response, error) {
	d, err := sc.newDriver()
	if err != nil {
		return nil, err
	}
	if sc.cycleLog != nil {
		d.SetLogStream(sc.cycleLog)
	}
	sc.driver = d
	return msg(d.Describe()), nil
}

func (sc *ShellController) show(cmd *shellcmd) (*Response, error) {
	if sc.driver == nil {
		return nil, errNoGame
	}
	out := sc.driver.Describe()
	out += fmt.Sprintf("\nTree size: %d positions", sc.driver.TreeSize())
	if val, ok := sc.driver.Valuation(); ok {
		out += fmt.Sprintf("\nScore: X %.2f, O %.2f",
			val[tictactoe.PlayerX], val[tictactoe.PlayerO])
	}
	return msg(out), nil
}

func (sc *ShellController) moves(cmd *shellcmd) (*Response, error) {
	if sc.driver == nil {
		return nil, errNoGame
	}
	if sc.driver.IsFinished() {
		return nil, errors.New("the game is over")
	}
	return msg(sc.genDisplayMoveList()), nil
}

// genDisplayMoveList renders every legal move with the score the tree knows
// for it, starring the moves tied for best.
func (sc *ShellController) genDisplayMoveList() string {
	var ss strings.Builder
	ss.WriteString("     Move    Score\n")

	active, _ := sc.driver.ActivePlayer()
	node := sc.driver.CurrentNode()
	table := sc.driver.Table()
	best := map[tictactoe.Move]bool{}
	for _, mv := range sc.driver.Scorer().BestMoves(table, node) {
		best[mv] = true
	}
	for i, mv := range sc.driver.AllLegalMoves() {
		score := "?"
		if key, ok := node.SuccessorKey(mv); ok {
			if child, found := table.Get(key); found {
				if val, scored := sc.driver.Scorer().Valuation(table, child); scored {
					score = fmt.Sprintf("%.2f", val[active])
					if best[mv] {
						score += " *"
					}
				}
			}
		}
		ss.WriteString(moveTableRow(i, mv, score) + "\n")
	}
	return strings.TrimRight(ss.String(), "\n")
}

func (sc *ShellController) play(cmd *shellcmd) (*Response, error) {
	if sc.driver == nil {
		return nil, errNoGame
	}
	if cmd.args == nil {
		return nil, errors.New("usage: play <col,row>, or play #<n> from the moves list")
	}
	arg := cmd.args[0]
	var mv tictactoe.Move
	if strings.HasPrefix(arg, "#") {
		idx, err := strconv.Atoi(arg[1:])
		if err != nil {
			return nil, err
		}
		legal := sc.driver.AllLegalMoves()
		if idx < 1 || idx > len(legal) {
			return nil, errors.New("move outside range")
		}
		mv = legal[idx-1]
	} else {
		var err error
		mv, err = tictactoe.ParseMove(arg)
		if err != nil {
			return nil, err
		}
	}
	if err := sc.driver.CommitMove(mv); err != nil {
		return nil, err
	}
	return msg(sc.driver.Describe()), nil
}

func (sc *ShellController) engine(cmd *shellcmd) (*Response, error) {
	if sc.driver == nil {
		return nil, errNoGame
	}
	if sc.driver.IsFinished() {
		return nil, errors.New("the game is over")
	}
	mv, err := sc.driver.ChooseMove()
	if err != nil {
		return nil, err
	}
	if err := sc.driver.CommitMove(mv); err != nil {
		return nil, err
	}
	return msg(fmt.Sprintf("engine plays %s\n%s", mv, sc.driver.Describe())), nil
}

func (sc *ShellController) auto(cmd *shellcmd) (*Response, error) {
	if sc.driver == nil {
		return nil, errNoGame
	}
	if err := sc.driver.Play(context.Background()); err != nil {
		return nil, err
	}
	return msg(sc.driver.Describe()), nil
}

func (sc *ShellController) score(cmd *shellcmd) (*Response, error) {
	if sc.driver == nil {
		return nil, errNoGame
	}
	val, ok := sc.driver.Valuation()
	if !ok {
		return msg("The current position is not scored yet. Expand further or finish the game."), nil
	}
	return msg(fmt.Sprintf("X: %.2f, O: %.2f",
		val[tictactoe.PlayerX], val[tictactoe.PlayerO])), nil
}

func (sc *ShellController) treeStats(cmd *shellcmd) (*Response, error) {
	if sc.driver == nil {
		return nil, errNoGame
	}
	t := sc.driver.Table()
	st := t.Stats()
	return msg(fmt.Sprintf(
		"Positions:  %d\nGeneration: %d\nInserted:   %d\nMerged:     %d\nExpanded:   %d\nRemoved:    %d",
		t.Size(), t.Generation(), st.Inserted, st.Merged, st.Expanded, st.Removed)), nil
}

func (sc *ShellController) set(cmd *shellcmd) (*Response, error) {
	if cmd.args == nil {
		return msg(sc.settingsDisplay()), nil
	}
	key := cmd.args[0]
	if !lo.Contains(settableKeys, key) {
		return nil, fmt.Errorf("%q is not a settable option", key)
	}
	if len(cmd.args) == 1 {
		return msg(fmt.Sprintf("%s: %s", key, sc.config.GetString(key))), nil
	}
	value := cmd.args[1]
	if err := sc.validateSetting(key, value); err != nil {
		return nil, err
	}
	sc.config.Set(key, value)
	if key == config.ConfigDebug {
		if sc.config.GetBool(config.ConfigDebug) {
			zerolog.SetGlobalLevel(zerolog.DebugLevel)
		} else {
			zerolog.SetGlobalLevel(zerolog.InfoLevel)
		}
	}
	if sc.driver != nil {
		if err := sc.applyPolicies(sc.driver); err != nil {
			return nil, err
		}
	}
	return msg("set " + key + " to " + value), nil
}

// validateSetting rejects a new value before it lands in the config, using
// the prospective value wherever the policy factories need related keys.
func (sc *ShellController) validateSetting(key, value string) error {
	get := func(k string) string {
		if k == key {
			return value
		}
		return sc.config.GetString(k)
	}
	switch key {
	case config.ConfigStrategy, config.ConfigControl, config.ConfigSearchDepth:
		depth, err := strconv.Atoi(get(config.ConfigSearchDepth))
		if err != nil {
			return err
		}
		_, err = search.BuildControl[tictactoe.State, tictactoe.Move, tictactoe.Player](
			get(config.ConfigControl), get(config.ConfigStrategy), 0, 0, depth)
		return err
	case config.ConfigSelector:
		_, err := search.SelectorByName[tictactoe.State, tictactoe.Move, tictactoe.Player](value)
		return err
	case config.ConfigPruning:
		_, err := search.PrunerByName[tictactoe.State, tictactoe.Move, tictactoe.Player](value)
		return err
	case config.ConfigNodeLimit, config.ConfigAutoplayGames:
		_, err := strconv.Atoi(value)
		return err
	case config.ConfigTimeLimit, config.ConfigMaxTableFraction:
		_, err := strconv.ParseFloat(value, 64)
		return err
	case config.ConfigDebug:
		_, err := strconv.ParseBool(value)
		return err
	}
	return nil
}

func (sc *ShellController) settingsDisplay() string {
	lines := lo.Map(settableKeys, func(key string, _ int) string {
		return fmt.Sprintf("%-20s %s", key, sc.config.GetString(key))
	})
	return strings.Join(lines, "\n")
}

func (sc *ShellController) budget(cmd *shellcmd) (*Response, error) {
	fraction := sc.config.GetFloat64(config.ConfigMaxTableFraction)
	if len(cmd.args) > 0 {
		f, err := strconv.ParseFloat(cmd.args[0], 64)
		if err != nil {
			return nil, err
		}
		if f <= 0 || f > 1 {
			return nil, errors.New("fraction must be in (0, 1]")
		}
		fraction = f
		sc.config.Set(config.ConfigMaxTableFraction, f)
	}
	limit := search.SuggestNodeLimit(fraction)
	sc.config.Set(config.ConfigNodeLimit, limit)
	if sc.driver != nil {
		if err := sc.applyPolicies(sc.driver); err != nil {
			return nil, err
		}
	}
	return msg(fmt.Sprintf("node-limit set to %d (%.0f%% of system memory)",
		limit, fraction*100)), nil
}

func (sc *ShellController) cycleLogCmd(cmd *shellcmd) (*Response, error) {
	if cmd.args == nil {
		return nil, errors.New("usage: log <file>, or log stop")
	}
	if cmd.args[0] == "stop" {
		if sc.cycleLog == nil {
			return nil, errors.New("no cycle log to stop")
		}
		if sc.driver != nil {
			sc.driver.SetLogStream(nil)
		}
		err := sc.cycleLog.Close()
		sc.cycleLog = nil
		if err != nil {
			return nil, err
		}
		return msg("stopped the cycle log"), nil
	}
	f, err := os.Create(cmd.args[0])
	if err != nil {
		return nil, err
	}
	if sc.cycleLog != nil {
		sc.cycleLog.Close()
	}
	sc.cycleLog = f
	if sc.driver != nil {
		sc.driver.SetLogStream(f)
	}
	return msg("will log decision cycles to " + cmd.args[0]), nil
}

// autoplayCmd runs a batch of unattended games, optionally naming the X and
// O selectors: autoplay [xselector [oselector]] -games 100 -threads 4.
func (sc *ShellController) autoplayCmd(cmd *shellcmd) (*Response, error) {
	games, err := cmd.options.IntDefault("games", sc.config.GetInt(config.ConfigAutoplayGames))
	if err != nil {
		return nil, err
	}
	threads, err := cmd.options.IntDefault("threads", 1)
	if err != nil {
		return nil, err
	}
	r := autoplay.NewRunner(sc.newDriver)
	r.SetThreads(threads)
	if len(cmd.args) > 0 {
		sel, err := search.SelectorByName[tictactoe.State, tictactoe.Move, tictactoe.Player](cmd.args[0])
		if err != nil {
			return nil, err
		}
		r.SetSelector(tictactoe.PlayerX, sel)
	}
	if len(cmd.args) > 1 {
		sel, err := search.SelectorByName[tictactoe.State, tictactoe.Move, tictactoe.Player](cmd.args[1])
		if err != nil {
			return nil, err
		}
		r.SetSelector(tictactoe.PlayerO, sel)
	}
	if cmd.options.Bool("random-seating") {
		r.RandomizeSeating(true)
	}
	res, err := r.Run(context.Background(), games)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := res.Summary(&buf); err != nil {
		return nil, err
	}
	return msg(strings.TrimRight(buf.String(), "\n")), nil
}
