package main

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/golang/glog"
	"github.com/spf13/viper"

	"github.com/joshi-prasad/optpricer"
)

const kEnvPrefix = "OPTPRICER"

// Config is resolved once per invocation from defaults, an optional config
// file, OPTPRICER_* environment variables and flags, in increasing order of
// precedence.
type Config struct {
	Simulation SimulationConfig `mapstructure:"simulation"`
	Compare    CompareConfig    `mapstructure:"compare"`
	Solver     SolverConfig     `mapstructure:"solver"`
	Ladder     LadderConfig     `mapstructure:"ladder"`
	Output     OutputConfig     `mapstructure:"output"`
}

type SimulationConfig struct {
	Paths   int    `mapstructure:"paths"`
	Steps   int    `mapstructure:"steps"`
	Seed    uint64 `mapstructure:"seed"` // 0 draws a fresh seed per run
	Workers int    `mapstructure:"workers"`
}

type CompareConfig struct {
	Paths int `mapstructure:"paths"`
}

type SolverConfig struct {
	InitialGuess float64 `mapstructure:"initial_guess"`
	Lower        float64 `mapstructure:"lower"`
	Upper        float64 `mapstructure:"upper"`
}

type LadderConfig struct {
	Strikes int     `mapstructure:"strikes"`
	Step    float64 `mapstructure:"step"`
}

type OutputConfig struct {
	Dir     string `mapstructure:"dir"`
	Journal string `mapstructure:"journal"` // empty disables the journal
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetDefault("simulation.paths", optpricer.DefaultNumPaths)
	v.SetDefault("simulation.steps", optpricer.DefaultNumSteps)
	v.SetDefault("simulation.seed", 0)
	v.SetDefault("simulation.workers", runtime.GOMAXPROCS(0))
	v.SetDefault("compare.paths", 100000)
	v.SetDefault("solver.initial_guess", 0.3)
	v.SetDefault("solver.lower", 0.001)
	v.SetDefault("solver.upper", 5.0)
	v.SetDefault("ladder.strikes", 11)
	v.SetDefault("ladder.step", 5.0)
	v.SetDefault("output.dir", "charts")
	v.SetDefault("output.journal", "")

	v.SetEnvPrefix(kEnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// loadConfig reads configFile when set and decodes the merged settings.
func loadConfig(v *viper.Viper, configFile string) (*Config, error) {
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", configFile, err)
		}
		glog.Infof("Loaded configuration from %s", v.ConfigFileUsed())
	}

	conf := &Config{}
	if err := v.Unmarshal(conf); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := conf.validate(); err != nil {
		return nil, err
	}
	return conf, nil
}

func (c *Config) validate() error {
	if c.Simulation.Paths <= 0 {
		return configError("simulation.paths must be positive, got %d", c.Simulation.Paths)
	}
	if c.Simulation.Steps <= 0 {
		return configError("simulation.steps must be positive, got %d", c.Simulation.Steps)
	}
	if c.Simulation.Workers <= 0 {
		return configError("simulation.workers must be positive, got %d", c.Simulation.Workers)
	}
	if c.Compare.Paths <= 0 {
		return configError("compare.paths must be positive, got %d", c.Compare.Paths)
	}
	if c.Solver.Lower <= 0 || c.Solver.Upper <= c.Solver.Lower {
		return configError("solver bounds [%v, %v] are invalid", c.Solver.Lower, c.Solver.Upper)
	}
	if c.Solver.InitialGuess <= 0 {
		return configError("solver.initial_guess must be positive, got %v", c.Solver.InitialGuess)
	}
	if c.Ladder.Strikes <= 0 || c.Ladder.Step <= 0 {
		return configError("ladder needs positive strikes and step, got %d and %v",
			c.Ladder.Strikes, c.Ladder.Step)
	}
	return nil
}

func configError(format string, args ...interface{}) error {
	msg := fmt.Sprintf(format, args...)
	glog.Error(msg)
	return fmt.Errorf("%w: %s", optpricer.ErrInvalidParameter, msg)
}

// monteCarloOptions maps the simulation settings onto engine options.
func (c *Config) monteCarloOptions() []optpricer.MonteCarloOption {
	opts := []optpricer.MonteCarloOption{optpricer.WithWorkers(c.Simulation.Workers)}
	if c.Simulation.Seed != 0 {
		opts = append(opts, optpricer.WithSeed(c.Simulation.Seed))
	}
	return opts
}

func (c *Config) solveOptions() optpricer.SolveOptions {
	opts := optpricer.DefaultSolveOptions()
	opts.InitialGuess = c.Solver.InitialGuess
	opts.Lower = c.Solver.Lower
	opts.Upper = c.Solver.Upper
	return opts
}
