// Package automation runs scripted scenarios and Monte Carlo studies of
// the controller on top of the sim runner and ensemble.
package automation

import (
	"context"
	"math"
	"math/rand"
	"os"
	"sort"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/pitchloop/internal/config"
	"github.com/san-kum/pitchloop/internal/dynamo"
	"github.com/san-kum/pitchloop/internal/sim"
)

// Scenario defines a scripted simulation sequence
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep is a single run in a scenario: a preset (reference when
// empty) with overrides in config.SetParam syntax.
type ScenarioStep struct {
	Name     string             `yaml:"name"`
	Preset   string             `yaml:"preset"`
	StopTime float64            `yaml:"stop_time"`
	Set      map[string]float64 `yaml:"set"`
	SaveAs   string             `yaml:"save_as"`
}

// StepResult pairs a scenario step with its run.
type StepResult struct {
	Step   ScenarioStep
	Config *config.Config
	Result *sim.Result
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, errors.Wrapf(err, "parse scenario %s", path)
	}
	if len(scenario.Steps) == 0 {
		return nil, errors.Errorf("scenario %s has no steps", path)
	}
	return &scenario, nil
}

// Config builds the step's configuration.
func (s ScenarioStep) Config() (*config.Config, error) {
	name := s.Preset
	if name == "" {
		name = "reference"
	}
	cfg := config.GetPreset(name)
	if cfg == nil {
		return nil, errors.Errorf("unknown preset %q", name)
	}
	if s.StopTime > 0 {
		cfg.StopTime = s.StopTime
	}
	keys := make([]string, 0, len(s.Set))
	for k := range s.Set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := cfg.SetParam(k, s.Set[k]); err != nil {
			return nil, err
		}
	}
	return cfg, cfg.Validate()
}

// RunScenario executes the steps in order. A step whose model faults is
// kept with Result.Err set; configuration errors and cancellation abort
// the scenario.
func RunScenario(ctx context.Context, scenario *Scenario, logger *zap.SugaredLogger) ([]StepResult, error) {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	results := make([]StepResult, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		logger.Infow("scenario step", "scenario", scenario.Name, "step", i+1, "of", len(scenario.Steps), "name", step.Name)

		cfg, err := step.Config()
		if err != nil {
			return results, errors.Wrapf(err, "step %d", i+1)
		}
		m, err := cfg.NewModel()
		if err != nil {
			return results, errors.Wrapf(err, "step %d setup", i+1)
		}

		result, err := sim.Run(ctx, m, sim.RunOptions{
			MaxSteps: cfg.Steps(),
			Record:   true,
			Logger:   logger.With("step", i+1),
		})
		if result == nil {
			return results, errors.Wrapf(err, "step %d run", i+1)
		}
		results = append(results, StepResult{Step: step, Config: cfg, Result: result})
		if ctxErr := ctx.Err(); ctxErr != nil {
			return results, ctxErr
		}
	}

	return results, nil
}

// MonteCarloConfig perturbs the initial state of a base configuration.
type MonteCarloConfig struct {
	Base         *config.Config
	Perturbation float64
	NumTrials    int
	Bound        float64
	Seed         int64
	Parallelism  int
}

// MonteCarloResult holds the outcome of one trial.
type MonteCarloResult struct {
	TrialID    int
	InitState  dynamo.State
	FinalState dynamo.State
	Stable     bool // no fault and final state within Bound
	Err        error
}

// RunMonteCarlo executes the trials as one ensemble. Trial faults are
// reported per trial; only invalid input and cancellation are returned.
func RunMonteCarlo(ctx context.Context, cfg *MonteCarloConfig, logger *zap.SugaredLogger) ([]MonteCarloResult, error) {
	if cfg.Base == nil {
		return nil, errors.New("monte carlo needs a base configuration")
	}
	if cfg.NumTrials <= 0 {
		return nil, errors.Errorf("trials must be positive, got %d", cfg.NumTrials)
	}
	if cfg.Perturbation < 0 || cfg.Bound <= 0 {
		return nil, errors.Errorf("perturbation %v must be non-negative and bound %v positive", cfg.Perturbation, cfg.Bound)
	}
	if err := cfg.Base.Validate(); err != nil {
		return nil, err
	}
	loop, err := cfg.Base.Loop()
	if err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	if cfg.Seed == 0 {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	base := cfg.Base.InitialState()
	members := make([]sim.Member, cfg.NumTrials)
	results := make([]MonteCarloResult, cfg.NumTrials)
	for trial := range members {
		initState := base
		for i := range initState {
			initState[i] += (rng.Float64() - 0.5) * 2 * cfg.Perturbation
		}
		simCfg := cfg.Base.SimConfig()
		simCfg.InitialState = initState
		members[trial] = sim.Member{Name: trialName(trial), Config: simCfg, Loop: *loop}
		results[trial] = MonteCarloResult{TrialID: trial, InitState: initState}
	}

	ens := sim.NewEnsemble(members, logger)
	ens.SetParallelism(cfg.Parallelism)
	runs, _ := ens.Run(ctx, sim.RunOptions{MaxSteps: cfg.Base.Steps(), Record: true})
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	for i, run := range runs {
		if run == nil {
			continue
		}
		results[i].Err = run.Err
		if len(run.States) > 0 {
			results[i].FinalState = run.States[len(run.States)-1]
		}
		results[i].Stable = run.Err == nil && bounded(results[i].FinalState, cfg.Bound)
	}
	return results, nil
}

func trialName(i int) string {
	return "trial-" + strconv.Itoa(i)
}

func bounded(x dynamo.State, bound float64) bool {
	for _, v := range x {
		if math.IsNaN(v) || math.Abs(v) > bound {
			return false
		}
	}
	return true
}

// MonteCarloStats computes summary statistics from Monte Carlo results
func MonteCarloStats(results []MonteCarloResult) (stableCount int, unstableCount int) {
	for _, r := range results {
		if r.Stable {
			stableCount++
		} else {
			unstableCount++
		}
	}
	return
}
