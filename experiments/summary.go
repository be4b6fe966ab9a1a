package experiments

import (
	"math"

	"github.com/samber/lo"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"nogo/engine"
	"nogo/experiments/metrics"
	"nogo/game"
)

// Confidence of the win rate interval, in percent.
const Confidence = 95

type MatchUpResult struct {
	First   string // Agent named first in the match up
	Second  string
	Games   int
	Wins    int // Games won by First
	WinRate float64
	Margin  float64 // Half width of the win rate confidence interval
}

// Throughput is the search speed of one agent in iterations per second, over its moves.
type Throughput struct {
	Agent  string
	Moves  int
	Mean   float64
	StdDev float64
}

type Summary struct {
	Games      int
	MatchUps   []MatchUpResult
	Throughput []Throughput
}

// zVal returns the two-tailed Z-value of a confidence interval given in percent.
func zVal(confidence float64) float64 {
	dist := distuv.Normal{Mu: 0, Sigma: 1}
	return dist.Quantile((1 + confidence/100) / 2)
}

func summarise(exp Experiment, jobs []job, results []engine.Result) Summary {
	summary := Summary{Games: len(results)}
	z := zVal(Confidence)

	for mi, mu := range exp.MatchUps {
		first := exp.Agents[mu[0]].Name
		idx := lo.Filter(lo.Range(len(jobs)), func(i int, _ int) bool {
			return jobs[i].matchUp == mi
		})
		wins := lo.CountBy(idx, func(i int) bool {
			return winnerName(results[i]) == first
		})
		r := MatchUpResult{
			First:  first,
			Second: exp.Agents[mu[1]].Name,
			Games:  len(idx),
			Wins:   wins,
		}
		if r.Games > 0 {
			r.WinRate = float64(wins) / float64(r.Games)
			r.Margin = z * math.Sqrt(r.WinRate*(1-r.WinRate)/float64(r.Games))
		}
		summary.MatchUps = append(summary.MatchUps, r)
	}

	summary.Throughput = throughput(results)
	return summary
}

func winnerName(result engine.Result) string {
	switch result.Winner {
	case game.Black:
		return result.Game.Black
	case game.White:
		return result.Game.White
	}
	return ""
}

type rate struct {
	agent string
	value float64
}

// throughput groups per-move search rates by agent. Moves without a measured search are skipped.
func throughput(results []engine.Result) []Throughput {
	rates := lo.FlatMap(results, func(result engine.Result, _ int) []rate {
		return lo.FilterMap(result.Moves, func(m metrics.MoveMetric, _ int) (rate, bool) {
			if m.Iterations == 0 || m.Duration <= 0 {
				return rate{}, false
			}
			name := result.Game.Black
			if m.Side == game.White.String() {
				name = result.Game.White
			}
			return rate{agent: name, value: float64(m.Iterations) / m.Duration.Seconds()}, true
		})
	})

	grouped := lo.GroupBy(rates, func(r rate) string { return r.agent })
	names := lo.Uniq(lo.Map(rates, func(r rate, _ int) string { return r.agent }))
	return lo.Map(names, func(name string, _ int) Throughput {
		values := lo.Map(grouped[name], func(r rate, _ int) float64 { return r.value })
		t := Throughput{Agent: name, Moves: len(values), Mean: stat.Mean(values, nil)}
		if len(values) > 1 {
			t.StdDev = stat.StdDev(values, nil)
		}
		return t
	})
}
