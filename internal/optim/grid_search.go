package optim

import (
	"context"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/san-kum/pitchloop/internal/config"
	"github.com/san-kum/pitchloop/internal/sim"
)

// GridSearch evaluates every combination of parameter values and keeps
// the one minimizing a metric. Parameters use config.SetParam names.
type GridSearch struct {
	paramNames []string
	ranges     [][]float64
	parallel   int
	logger     *zap.SugaredLogger
}

func NewGridSearch(params []string, ranges [][]float64, logger *zap.SugaredLogger) (*GridSearch, error) {
	if len(params) == 0 {
		return nil, errors.New("grid search needs at least one parameter")
	}
	if len(params) != len(ranges) {
		return nil, errors.Errorf("%d parameters but %d ranges", len(params), len(ranges))
	}
	for i, r := range ranges {
		if len(r) == 0 {
			return nil, errors.Errorf("empty range for %s", params[i])
		}
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &GridSearch{paramNames: params, ranges: ranges, logger: logger}, nil
}

// SetParallelism caps concurrent runs; n <= 0 keeps the default of one
// run per CPU.
func (g *GridSearch) SetParallelism(n int) { g.parallel = n }

// Trial is one evaluated grid point.
type Trial struct {
	Params map[string]float64
	Value  float64
	Err    error
}

// Candidates enumerates the grid, first parameter slowest.
func (g *GridSearch) Candidates() []map[string]float64 {
	var out []map[string]float64
	g.candidatesRecursive(0, map[string]float64{}, &out)
	return out
}

func (g *GridSearch) candidatesRecursive(depth int, current map[string]float64, out *[]map[string]float64) {
	if depth == len(g.paramNames) {
		*out = append(*out, current)
		return
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		newParams := make(map[string]float64, len(current)+1)
		for k, v := range current {
			newParams[k] = v
		}
		newParams[paramName] = val

		g.candidatesRecursive(depth+1, newParams, out)
	}
}

// Search runs every candidate as a member of one parallel ensemble built
// from base. Candidates that fail to configure, diverge or overrun are
// reported in the trials but never chosen.
func (g *GridSearch) Search(
	ctx context.Context,
	base *config.Config,
	metricName string,
	opts sim.RunOptions,
	newMetrics func() []sim.Metric,
) (Trial, []Trial, error) {
	candidates := g.Candidates()
	trials := make([]Trial, len(candidates))

	var members []sim.Member
	var memberTrial []int
	for i, params := range candidates {
		trials[i] = Trial{Params: params, Value: math.Inf(1)}

		cfg := base.Clone()
		if err := applyParams(cfg, params); err != nil {
			trials[i].Err = err
			continue
		}
		loop, err := cfg.Loop()
		if err != nil {
			trials[i].Err = err
			continue
		}
		members = append(members, sim.Member{
			Name:   FormatParams(params),
			Config: cfg.SimConfig(),
			Loop:   *loop,
		})
		memberTrial = append(memberTrial, i)
	}

	ens := sim.NewEnsemble(members, g.logger)
	ens.SetMetrics(newMetrics)
	ens.SetParallelism(g.parallel)
	results, err := ens.Run(ctx, opts)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return Trial{}, trials, ctxErr
	}
	if err != nil {
		g.logger.Debugw("some candidates failed", "error", err)
	}

	best := -1
	for j, res := range results {
		i := memberTrial[j]
		if res == nil {
			trials[i].Err = errors.New("no result")
			continue
		}
		if res.Err != nil {
			trials[i].Err = res.Err
			continue
		}
		val, ok := res.Metrics[metricName]
		if !ok {
			trials[i].Err = errors.Errorf("metric %q not recorded", metricName)
			continue
		}
		trials[i].Value = val
		if best < 0 || val < trials[best].Value {
			best = i
		}
	}

	if best < 0 {
		return Trial{}, trials, errors.Errorf("no candidate out of %d completed", len(candidates))
	}
	g.logger.Infow("grid search finished", "candidates", len(candidates), "best", FormatParams(trials[best].Params), metricName, trials[best].Value)
	return trials[best], trials, nil
}

func applyParams(cfg *config.Config, params map[string]float64) error {
	for _, name := range sortedKeys(params) {
		if err := cfg.SetParam(name, params[name]); err != nil {
			return err
		}
	}
	return cfg.Validate()
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// FormatParams renders params as "a=1,b=2" in name order.
func FormatParams(params map[string]float64) string {
	parts := make([]string, 0, len(params))
	for _, k := range sortedKeys(params) {
		parts = append(parts, k+"="+strconv.FormatFloat(params[k], 'g', -1, 64))
	}
	return strings.Join(parts, ",")
}

// ParseRange parses "name=min:max:count" into a parameter name and count
// evenly spaced values. A bare "name=v" is a single value.
func ParseRange(expr string) (string, []float64, error) {
	name, rng, ok := strings.Cut(expr, "=")
	if !ok || name == "" {
		return "", nil, errors.Errorf("range %q: want name=min:max:count", expr)
	}

	fields := strings.Split(rng, ":")
	switch len(fields) {
	case 1:
		v, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return "", nil, errors.Wrapf(err, "range %q", expr)
		}
		return name, []float64{v}, nil
	case 3:
	default:
		return "", nil, errors.Errorf("range %q: want name=min:max:count", expr)
	}

	lo, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return "", nil, errors.Wrapf(err, "range %q min", expr)
	}
	hi, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return "", nil, errors.Wrapf(err, "range %q max", expr)
	}
	n, err := strconv.Atoi(fields[2])
	if err != nil || n < 1 {
		return "", nil, errors.Errorf("range %q: count must be a positive integer", expr)
	}

	if n == 1 {
		return name, []float64{lo}, nil
	}
	vals := make([]float64, n)
	step := (hi - lo) / float64(n-1)
	for i := range vals {
		vals[i] = lo + float64(i)*step
	}
	vals[n-1] = hi
	return name, vals, nil
}
