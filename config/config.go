// Package config loads plybot settings. Precedence, lowest to highest:
// built-in defaults, an optional plybot.yaml config file, PLYBOT_*
// environment variables, command-line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Canonical setting keys. Flags, environment variables and the shell's
// set command all address settings through these.
const (
	ConfigDebug            = "debug"
	ConfigTimeLimit        = "time-limit"
	ConfigNodeLimit        = "node-limit"
	ConfigSearchDepth      = "search-depth"
	ConfigStrategy         = "strategy"
	ConfigControl          = "control"
	ConfigSelector         = "selector"
	ConfigPruning          = "pruning"
	ConfigCycleLog         = "cycle-log"
	ConfigMaxTableFraction = "max-table-fraction"
	ConfigAutoplayGames    = "autoplay-games"
	ConfigCPUProfile       = "cpu-profile"
	ConfigMemProfile       = "mem-profile"
)

type Config struct {
	v    *viper.Viper
	rest []string
}

func (c *Config) Load(args []string) error {
	c.v = viper.New()

	c.v.SetDefault(ConfigDebug, false)
	c.v.SetDefault(ConfigTimeLimit, 0.0)
	c.v.SetDefault(ConfigNodeLimit, 0)
	c.v.SetDefault(ConfigSearchDepth, 0)
	c.v.SetDefault(ConfigStrategy, "one-step")
	c.v.SetDefault(ConfigControl, "bounded")
	c.v.SetDefault(ConfigSelector, "best-random")
	c.v.SetDefault(ConfigPruning, "reachable")
	c.v.SetDefault(ConfigCycleLog, "")
	c.v.SetDefault(ConfigMaxTableFraction, 0.25)
	c.v.SetDefault(ConfigAutoplayGames, 100)
	c.v.SetDefault(ConfigCPUProfile, "")
	c.v.SetDefault(ConfigMemProfile, "")

	fs := pflag.NewFlagSet("plybot", pflag.ContinueOnError)
	fs.Bool(ConfigDebug, false, "log at debug level")
	fs.Float64(ConfigTimeLimit, 0, "expansion time budget per decision, in seconds; 0 for none")
	fs.Int(ConfigNodeLimit, 0, "expansion node budget (table size); 0 for none")
	fs.Int(ConfigSearchDepth, 0, "forward-sweep depth in plies; 0 to expand without a horizon")
	fs.String(ConfigStrategy, "one-step", "expansion strategy (current, one-step)")
	fs.String(ConfigControl, "bounded", "expansion control (once, full, bounded)")
	fs.String(ConfigSelector, "best-random", "move selector (first, random, best-random)")
	fs.String(ConfigPruning, "reachable", "pruning policy (none, reachable)")
	fs.String(ConfigCycleLog, "", "write a YAML record per decision cycle to this file")
	fs.Float64(ConfigMaxTableFraction, 0.25, "fraction of system memory the search tree may use")
	fs.Int(ConfigAutoplayGames, 100, "number of games per autoplay batch")
	fs.String(ConfigCPUProfile, "", "write a CPU profile to this file")
	fs.String(ConfigMemProfile, "", "write a memory profile to this file")
	// Flags stop at the first positional argument; the rest is a shell
	// command for one-shot runs.
	fs.SetInterspersed(false)
	if err := fs.Parse(args); err != nil {
		return err
	}
	c.rest = fs.Args()
	if err := c.v.BindPFlags(fs); err != nil {
		return err
	}

	c.v.SetEnvPrefix("plybot")
	c.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	c.v.AutomaticEnv()

	c.v.SetConfigName("plybot")
	c.v.SetConfigType("yaml")
	c.v.AddConfigPath(".")
	if dir, err := os.UserConfigDir(); err == nil {
		c.v.AddConfigPath(filepath.Join(dir, "plybot"))
	}
	if err := c.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("reading config file: %w", err)
		}
	} else {
		log.Debug().Str("file", c.v.ConfigFileUsed()).Msg("read-config-file")
	}
	return nil
}

func (c *Config) GetString(key string) string { return c.v.GetString(key) }

func (c *Config) GetBool(key string) bool { return c.v.GetBool(key) }

func (c *Config) GetInt(key string) int { return c.v.GetInt(key) }

func (c *Config) GetFloat64(key string) float64 { return c.v.GetFloat64(key) }

func (c *Config) Set(key string, value any) { c.v.Set(key, value) }

func (c *Config) AllSettings() map[string]any { return c.v.AllSettings() }

// Args returns the positional arguments left after flag parsing.
func (c *Config) Args() []string { return c.rest }

// TimeLimit converts the time-limit setting, a float number of seconds,
// to a duration. Zero means no time budget.
func (c *Config) TimeLimit() time.Duration {
	return time.Duration(c.v.GetFloat64(ConfigTimeLimit) * float64(time.Second))
}
