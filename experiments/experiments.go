package experiments

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"nogo/config"
	"nogo/engine"
	"nogo/experiments/metrics"
	"nogo/game"
	"nogo/searcher"
	"nogo/searcher/agent"
)

const (
	NumGames   = 30 // Per match up
	TimeBudget = 10 * time.Second
)

type Experiment struct {
	Name     string
	Size     int
	Games    int // Per match up
	Parallel int // Games played at once, 0 for one per CPU
	Agents   []config.Search
	MatchUps [][2]int // Indices into Agents
	OutDir   string   // Records are written below OutDir when set
}

// LeafParallelExperiment pairs agents with growing leaf parallelism against the
// sequential baseline, all sharing the same time budget.
func LeafParallelExperiment(size, games int) Experiment {
	baseline := timedConfig("baseline", 0)
	agents := []config.Search{baseline}
	matchUps := [][2]int{}
	for _, p := range []int{2, 4, 8, 16} {
		agents = append(agents, timedConfig(fmt.Sprintf("leaf%d", p), p))
		matchUps = append(matchUps, [2]int{0, len(agents) - 1})
	}
	return Experiment{
		Name:     "leaf_parallel",
		Size:     size,
		Games:    games,
		Agents:   agents,
		MatchUps: matchUps,
	}
}

// EarlyCutoffExperiment pairs agents using each early cutoff mode against the baseline.
func EarlyCutoffExperiment(size, games int) Experiment {
	baseline := timedConfig("baseline", 0)
	fixed := timedConfig("fixed", 0)
	fixed.Early = config.Early{Mode: config.EarlyFixed, Threshold: config.EarlyThreshold}
	throughput := timedConfig("throughput", 0)
	throughput.Early = config.Early{Mode: config.EarlyThroughput, Ratio: 0.5}
	unstable := timedConfig("unstable", 0)
	unstable.Unstable = 2
	return Experiment{
		Name:     "early_cutoff",
		Size:     size,
		Games:    games,
		Agents:   []config.Search{baseline, fixed, throughput, unstable},
		MatchUps: [][2]int{{0, 1}, {0, 2}, {0, 3}},
	}
}

func timedConfig(name string, leafParallel int) config.Search {
	cfg := config.Default()
	cfg.Name = name
	cfg.SimCount = 0
	cfg.TimeManaged = true
	cfg.EnhancedPeak = config.EnhancedPeak
	cfg.InitialTime = TimeBudget
	cfg.LeafParallel = leafParallel
	return cfg
}

func (e Experiment) validate() error {
	if e.Name == "" {
		return fmt.Errorf("experiment needs a name")
	}
	if e.Size < 1 {
		return fmt.Errorf("invalid board size %d", e.Size)
	}
	if e.Games < 1 {
		return fmt.Errorf("invalid number of games %d", e.Games)
	}
	for i, cfg := range e.Agents {
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("agent %d: %w", i, err)
		}
	}
	for i, mu := range e.MatchUps {
		for _, idx := range mu {
			if idx < 0 || idx >= len(e.Agents) {
				return fmt.Errorf("match up %d: no agent %d", i, idx)
			}
		}
	}
	return nil
}

type job struct {
	id      int
	matchUp int
	black   config.Search
	white   config.Search
}

func (e Experiment) jobs() []job {
	jobs := []job{}
	for mi, mu := range e.MatchUps {
		for i := 0; i < e.Games; i++ {
			first, second := e.Agents[mu[0]], e.Agents[mu[1]]
			if i%2 == 1 { // Alternate the starting agent
				first, second = second, first
			}
			jobs = append(jobs, job{id: len(jobs) + 1, matchUp: mi, black: first, white: second})
		}
	}
	return jobs
}

// Run plays every match up, writes the records when OutDir is set and returns the summary.
func Run(ctx context.Context, exp Experiment) (Summary, error) {
	if err := exp.validate(); err != nil {
		return Summary{}, err
	}
	parallel := exp.Parallel
	if parallel <= 0 {
		parallel = runtime.NumCPU()
	}
	jobs := exp.jobs()
	results := make([]engine.Result, len(jobs))

	log.Info().Msgf("starting %s experiment with %d games...", exp.Name, len(jobs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(parallel)
	for i, j := range jobs {
		i, j := i, j
		g.Go(func() error {
			result, err := runGame(ctx, exp.Size, j)
			if err != nil {
				return fmt.Errorf("game %d: %w", j.id, err)
			}
			results[i] = result
			log.Info().Msgf("completed game %d of %d (match up %d) with winner: %s", j.id, len(jobs), j.matchUp+1, result.Winner)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Summary{}, err
	}

	log.Info().Msgf("completed %s experiment", exp.Name)

	if exp.OutDir != "" {
		if err := write(exp, jobs, results); err != nil {
			return Summary{}, err
		}
	}
	return summarise(exp, jobs, results), nil
}

// runGame executes a single game between two agents.
func runGame(ctx context.Context, size int, j job) (engine.Result, error) {
	black, err := newAgent(j.black, game.Black, j.id)
	if err != nil {
		return engine.Result{}, err
	}
	white, err := newAgent(j.white, game.White, j.id)
	if err != nil {
		return engine.Result{}, err
	}
	return engine.NewLocal(size, black, white).Run(ctx)
}

// newAgent derives a distinct seed per game from a configured seed.
func newAgent(cfg config.Search, side game.Side, gameID int) (agent.Agent, error) {
	cfg.Role = side.String()
	if cfg.Seed != 0 {
		cfg.Seed += uint64(gameID)
	}
	return agent.New(cfg, searcher.WithMetrics())
}

func write(exp Experiment, jobs []job, results []engine.Result) error {
	writer, err := metrics.NewWriter(exp.OutDir, exp.Name)
	if err != nil {
		return fmt.Errorf("failed to create experiment writer: %w", err)
	}

	if err := writer.WriteAgentConfigs(exp.Agents); err != nil {
		return fmt.Errorf("failed to store agent configs: %w", err)
	}
	log.Info().Msg("stored agent configs")

	gameRecords, moveRecords := records(jobs, results)
	if err := writer.WriteGameRecords(gameRecords); err != nil {
		return fmt.Errorf("failed to write game records: %w", err)
	}
	log.Info().Msg("stored game records")

	if err := writer.WriteMoveRecords(moveRecords); err != nil {
		return fmt.Errorf("failed to write move records: %w", err)
	}
	log.Info().Msgf("stored move records in %s", writer.Dir())
	return nil
}

func records(jobs []job, results []engine.Result) ([]metrics.GameRecord, []metrics.MoveRecord) {
	gameRecords := []metrics.GameRecord{}
	moveRecords := []metrics.MoveRecord{}
	for i, result := range results {
		gameRecords = append(gameRecords, metrics.GameRecord{
			ID:         jobs[i].id,
			MatchUp:    jobs[i].matchUp,
			GameMetric: result.Game,
		})
		for _, mm := range result.Moves {
			moveRecords = append(moveRecords, metrics.MoveRecord{
				Game:       jobs[i].id,
				MoveMetric: mm,
			})
		}
	}
	return gameRecords, moveRecords
}
