package main

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshi-prasad/optpricer"
)

func TestLoadConfigDefaults(t *testing.T) {
	conf, err := loadConfig(newViper(), "")
	require.NoError(t, err)

	assert.Equal(t, optpricer.DefaultNumPaths, conf.Simulation.Paths)
	assert.Equal(t, optpricer.DefaultNumSteps, conf.Simulation.Steps)
	assert.Equal(t, uint64(0), conf.Simulation.Seed)
	assert.Equal(t, runtime.GOMAXPROCS(0), conf.Simulation.Workers)
	assert.Equal(t, 100000, conf.Compare.Paths)
	assert.Equal(t, 11, conf.Ladder.Strikes)
	assert.Equal(t, 5.0, conf.Ladder.Step)
	assert.Equal(t, "charts", conf.Output.Dir)
	assert.Empty(t, conf.Output.Journal)
	assert.Equal(t, optpricer.DefaultSolveOptions(), conf.solveOptions())
	assert.Len(t, conf.monteCarloOptions(), 1)
}

func TestLoadConfigFromEnvironment(t *testing.T) {
	t.Setenv("OPTPRICER_SIMULATION_PATHS", "500")
	t.Setenv("OPTPRICER_SIMULATION_SEED", "42")

	conf, err := loadConfig(newViper(), "")
	require.NoError(t, err)
	assert.Equal(t, 500, conf.Simulation.Paths)
	assert.Equal(t, uint64(42), conf.Simulation.Seed)
	assert.Len(t, conf.monteCarloOptions(), 2)
}

func TestLoadConfigFromFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "optpricer.yaml")
	content := `
simulation:
  paths: 2500
  steps: 50
  seed: 7
solver:
  upper: 3.5
ladder:
  strikes: 21
  step: 2.5
output:
  journal: prices.csv
`
	require.NoError(t, os.WriteFile(file, []byte(content), 0o644))

	conf, err := loadConfig(newViper(), file)
	require.NoError(t, err)
	assert.Equal(t, 2500, conf.Simulation.Paths)
	assert.Equal(t, 50, conf.Simulation.Steps)
	assert.Equal(t, uint64(7), conf.Simulation.Seed)
	assert.Equal(t, 3.5, conf.Solver.Upper)
	assert.Equal(t, 0.001, conf.Solver.Lower)
	assert.Equal(t, 21, conf.Ladder.Strikes)
	assert.Equal(t, 2.5, conf.Ladder.Step)
	assert.Equal(t, "prices.csv", conf.Output.Journal)
}

func TestLoadConfigRejectsInvalidSettings(t *testing.T) {
	tests := map[string]string{
		"paths":   "OPTPRICER_SIMULATION_PATHS",
		"steps":   "OPTPRICER_SIMULATION_STEPS",
		"workers": "OPTPRICER_SIMULATION_WORKERS",
		"compare": "OPTPRICER_COMPARE_PATHS",
		"lower":   "OPTPRICER_SOLVER_LOWER",
		"strikes": "OPTPRICER_LADDER_STRIKES",
	}
	for name, env := range tests {
		t.Run(name, func(t *testing.T) {
			t.Setenv(env, "0")
			_, err := loadConfig(newViper(), "")
			assert.ErrorIs(t, err, optpricer.ErrInvalidParameter)
		})
	}

	_, err := loadConfig(newViper(), filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
