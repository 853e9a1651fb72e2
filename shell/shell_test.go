package shell

import (
	"io"
	"strings"
	"testing"

	"github.com/matryer/is"

	"github.com/domino14/plybot/config"
)

func TestExtractFields(t *testing.T) {
	is := is.New(t)
	type testdata struct {
		line   string
		expCmd *shellcmd
		expErr error
	}
	cases := []testdata{
		{"", nil, errNoData},
		{"autoplay -games 50",
			&shellcmd{"autoplay", nil, CmdOptions{"games": []string{"50"}}},
			nil},
		{"log stop",
			&shellcmd{"log", []string{"stop"}, CmdOptions{}},
			nil},
		{"autoplay best-random random -games 20 -threads 4",
			&shellcmd{"autoplay",
				[]string{"best-random", "random"},
				CmdOptions{"games": []string{"20"}, "threads": []string{"4"}}},
			nil,
		},
		{"autoplay best-random random -games",
			nil, errWrongOptionSyntax},
	}
	for _, c := range cases {
		cmd, err := extractFields(c.line)
		is.Equal(cmd, c.expCmd)
		is.Equal(err, c.expErr)
	}
}

func TestCmdOptionsAccessors(t *testing.T) {
	is := is.New(t)
	opts := CmdOptions{
		"games":   []string{"25"},
		"seating": []string{"TRUE"},
	}
	is.Equal(opts.String("games"), "25")
	is.Equal(opts.String("absent"), "")

	n, err := opts.Int("games")
	is.NoErr(err)
	is.Equal(n, 25)
	_, err = opts.Int("absent")
	is.True(err != nil)

	n, err = opts.IntDefault("absent", 7)
	is.NoErr(err)
	is.Equal(n, 7)

	is.True(opts.Bool("seating"))
	is.True(!opts.Bool("absent"))
}

func newTestShell(t *testing.T) *ShellController {
	t.Helper()
	cfg := &config.Config{}
	if err := cfg.Load(nil); err != nil {
		t.Fatal(err)
	}
	return &ShellController{config: cfg, writer: io.Discard}
}

func TestValidateSetting(t *testing.T) {
	is := is.New(t)
	sc := newTestShell(t)

	is.NoErr(sc.validateSetting(config.ConfigSelector, "random"))
	is.True(sc.validateSetting(config.ConfigSelector, "bogus") != nil)
	is.NoErr(sc.validateSetting(config.ConfigControl, "full"))
	is.True(sc.validateSetting(config.ConfigControl, "sometimes") != nil)
	is.NoErr(sc.validateSetting(config.ConfigSearchDepth, "3"))
	is.True(sc.validateSetting(config.ConfigSearchDepth, "three") != nil)
	is.NoErr(sc.validateSetting(config.ConfigTimeLimit, "0.5"))
	is.True(sc.validateSetting(config.ConfigTimeLimit, "fast") != nil)
	is.NoErr(sc.validateSetting(config.ConfigDebug, "true"))
	is.True(sc.validateSetting(config.ConfigDebug, "maybe") != nil)
}

func TestSetCommand(t *testing.T) {
	is := is.New(t)
	sc := newTestShell(t)

	resp, err := sc.set(&shellcmd{cmd: "set", options: CmdOptions{}})
	is.NoErr(err)
	is.True(strings.Contains(resp.message, "selector"))

	resp, err = sc.set(&shellcmd{cmd: "set", args: []string{"selector", "first"}, options: CmdOptions{}})
	is.NoErr(err)
	is.Equal(resp.message, "set selector to first")
	is.Equal(sc.config.GetString(config.ConfigSelector), "first")

	_, err = sc.set(&shellcmd{cmd: "set", args: []string{"selector", "bogus"}, options: CmdOptions{}})
	is.True(err != nil)
	is.Equal(sc.config.GetString(config.ConfigSelector), "first")

	_, err = sc.set(&shellcmd{cmd: "set", args: []string{"no-such-option", "1"}, options: CmdOptions{}})
	is.True(err != nil)
}

func TestPlayCommand(t *testing.T) {
	is := is.New(t)
	sc := newTestShell(t)

	// Commands that need a game reject politely before `new`.
	_, err := sc.show(&shellcmd{cmd: "show", options: CmdOptions{}})
	is.Equal(err, errNoGame)

	resp, err := sc.newGame(&shellcmd{cmd: "new", options: CmdOptions{}})
	is.NoErr(err)
	is.True(strings.Contains(resp.message, "Move: X"))

	resp, err = sc.play(&shellcmd{cmd: "play", args: []string{"1,1"}, options: CmdOptions{}})
	is.NoErr(err)
	is.True(strings.Contains(resp.message, "X"))
	is.Equal(sc.driver.Cycles(), uint64(1))

	// By number from the moves list.
	_, err = sc.play(&shellcmd{cmd: "play", args: []string{"#1"}, options: CmdOptions{}})
	is.NoErr(err)
	is.Equal(sc.driver.Cycles(), uint64(2))

	_, err = sc.play(&shellcmd{cmd: "play", args: []string{"9,9"}, options: CmdOptions{}})
	is.True(err != nil)
	is.Equal(sc.driver.Cycles(), uint64(2))
}

func TestEngineAndScoreCommands(t *testing.T) {
	is := is.New(t)
	sc := newTestShell(t)
	_, err := sc.newGame(&shellcmd{cmd: "new", options: CmdOptions{}})
	is.NoErr(err)

	// The default control expands to the fixed point, so one engine cycle
	// scores the whole game.
	resp, err := sc.engine(&shellcmd{cmd: "engine", options: CmdOptions{}})
	is.NoErr(err)
	is.True(strings.Contains(resp.message, "engine plays"))

	resp, err = sc.score(&shellcmd{cmd: "score", options: CmdOptions{}})
	is.NoErr(err)
	is.True(strings.Contains(resp.message, "X: 0.00"))

	resp, err = sc.moves(&shellcmd{cmd: "moves", options: CmdOptions{}})
	is.NoErr(err)
	is.True(strings.Contains(resp.message, "*"))

	resp, err = sc.auto(&shellcmd{cmd: "auto", options: CmdOptions{}})
	is.NoErr(err)
	is.True(strings.Contains(resp.message, "Draw") || strings.Contains(resp.message, "Winner"))

	resp, err = sc.treeStats(&shellcmd{cmd: "tree", options: CmdOptions{}})
	is.NoErr(err)
	is.True(strings.Contains(resp.message, "Positions:"))
}

func TestAutoplayCommand(t *testing.T) {
	is := is.New(t)
	sc := newTestShell(t)

	cmd, err := extractFields("autoplay random random -games 4 -threads 2")
	is.NoErr(err)
	resp, err := sc.autoplayCmd(cmd)
	is.NoErr(err)
	is.True(strings.Contains(resp.message, "Games played: 4"))
}
