package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"nogo/config"
	"nogo/engine"
	"nogo/experiments"
	"nogo/game"
	"nogo/searcher"
	"nogo/searcher/agent"
)

func main() {
	mode := flag.String("mode", "play", "One of play, serve or experiment")
	configPath := flag.String("config", "", "YAML config of the search agent")
	size := flag.Int("size", game.DefaultSize, "Board size")
	opponent := flag.String("opponent", string(config.StrategyRandom), "Opponent strategy in play mode (mcts or random)")
	addr := flag.String("addr", ":8080", "Listen address in serve mode")
	name := flag.String("experiment", "leaf_parallel", "Experiment to run (leaf_parallel or early_cutoff)")
	games := flag.Int("games", experiments.NumGames, "Games per match up")
	parallel := flag.Int("parallel", 0, "Games played at once, 0 for one per CPU")
	out := flag.String("out", "experiments", "Directory of experiment records")
	level := flag.String("log-level", "info", "Log level")
	flag.Parse()

	setupLogging(*level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var err error
	switch *mode {
	case "play":
		err = play(ctx, *configPath, *size, config.Strategy(*opponent))
	case "serve":
		err = serve(ctx, *configPath, *addr)
	case "experiment":
		err = experiment(ctx, *name, *size, *games, *parallel, *out)
	default:
		err = fmt.Errorf("unknown mode %q", *mode)
	}
	if err != nil {
		log.Fatal().Err(err).Msg("failed")
	}
}

func setupLogging(level string) {
	output := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	log.Logger = log.Output(output)

	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		log.Warn().Msgf("unknown log level %q, using info", level)
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
}

// play runs one local game of the configured agent against an opponent of the other side.
func play(ctx context.Context, path string, size int, strategy config.Strategy) error {
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	log.Info().Msgf("loaded config: %+v", cfg)
	self, err := agent.New(cfg, searcher.WithMetrics())
	if err != nil {
		return err
	}

	side, err := cfg.Side()
	if err != nil {
		return err
	}
	oppCfg := config.Default()
	oppCfg.Name = "opponent"
	oppCfg.Strategy = strategy
	oppCfg.Role = side.Opponent().String()
	other, err := agent.New(oppCfg, searcher.WithMetrics())
	if err != nil {
		return err
	}

	black, white := self, other
	if side == game.White {
		black, white = other, self
	}
	result, err := engine.NewLocal(size, black, white).Run(ctx)
	if err != nil {
		return err
	}
	fmt.Print(result.Final)
	fmt.Printf("winner: %s after %d moves\n", result.Winner, result.Game.TotalMoves)
	return nil
}

func serve(ctx context.Context, path, addr string) error {
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	a, err := agent.New(cfg)
	if err != nil {
		return err
	}
	side, err := cfg.Side()
	if err != nil {
		return err
	}
	return agent.NewServer(a, side).ListenAndServe(ctx, addr)
}

func experiment(ctx context.Context, name string, size, games, parallel int, out string) error {
	var exp experiments.Experiment
	switch name {
	case "leaf_parallel":
		exp = experiments.LeafParallelExperiment(size, games)
	case "early_cutoff":
		exp = experiments.EarlyCutoffExperiment(size, games)
	default:
		return fmt.Errorf("unknown experiment %q", name)
	}
	exp.Parallel = parallel
	exp.OutDir = out

	summary, err := experiments.Run(ctx, exp)
	if err != nil {
		return err
	}
	for _, mu := range summary.MatchUps {
		log.Info().Msgf("%s against %s: %d/%d wins (%.2f ± %.2f)", mu.First, mu.Second, mu.Wins, mu.Games, mu.WinRate, mu.Margin)
	}
	for _, t := range summary.Throughput {
		log.Info().Msgf("%s: %.0f ± %.0f iterations/s over %d moves", t.Agent, t.Mean, t.StdDev, t.Moves)
	}
	return nil
}
