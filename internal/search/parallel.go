package search

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/stat"

	"github.com/FTWinston/Stabalyzer/internal/eval"
	"github.com/FTWinston/Stabalyzer/pkg/diplomacy"
)

// seedStride spaces worker seeds so their PRNG streams stay distinct.
const seedStride = 7919

// ProgressFunc receives per-worker completion notices.
type ProgressFunc func(worker, simulations int)

// Analyze fans the search out across cfg.Threads independent workers and
// merges their rankings and transposition tables. Workers share nothing
// mutable: each owns its tree, PRNG, and table, and communicates only by
// sending its result back. A single worker failing is logged and skipped;
// cancelling ctx stops every worker at its next iteration boundary and
// the best partial ranking is still returned.
func Analyze(ctx context.Context, gs *diplomacy.GameState, coalition eval.Coalition, priorities []eval.Priority, cfg Config, progress ProgressFunc) (*Result, error) {
	cfg = cfg.withDefaults()
	m := diplomacy.StandardMap()
	start := time.Now()
	deadline := start.Add(cfg.SearchTime)

	cancel := &atomic.Bool{}
	watchDone := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			cancel.Store(true)
		case <-watchDone:
		}
	}()
	defer close(watchDone)

	runID := uuid.NewString()
	log.Debug().
		Str("analysis", runID).
		Str("coalition", coalition.Name).
		Int("threads", cfg.Threads).
		Int("maxDepth", cfg.MaxDepth).
		Msg("starting search")

	results := make([]*WorkerResult, cfg.Threads)
	if cfg.Threads == 1 {
		results[0] = runWorker(0, gs, coalition, priorities, cfg, m, cancel, deadline)
		if progress != nil && results[0] != nil {
			progress(0, results[0].Simulations)
		}
	} else {
		var wg sync.WaitGroup
		for i := 0; i < cfg.Threads; i++ {
			wg.Add(1)
			go func(worker int) {
				defer wg.Done()
				// The worker receives its own copy of the state; supply
				// centers travel as a fresh map so nothing is shared.
				results[worker] = runWorker(worker, gs.Clone(), coalition, priorities, cfg, m, cancel, deadline)
				if progress != nil && results[worker] != nil {
					progress(worker, results[worker].Simulations)
				}
			}(i)
		}
		wg.Wait()
	}

	merged := mergeResults(results)
	merged.ID = runID
	merged.Elapsed = time.Since(start)

	log.Info().
		Str("analysis", runID).
		Int("simulations", merged.Simulations).
		Dur("elapsed", merged.Elapsed).
		Int("candidates", len(merged.Moves)).
		Msg("search complete")

	if len(merged.Moves) == 0 && ctx.Err() == nil {
		return merged, fmt.Errorf("search produced no candidates (no legal coalition actions?)")
	}
	return merged, nil
}

// runWorker runs one search to the shared deadline. A panic inside the
// worker is recovered and logged; the worker's contribution is dropped and
// the other workers are unaffected.
func runWorker(worker int, gs *diplomacy.GameState, coalition eval.Coalition, priorities []eval.Priority, cfg Config, m *diplomacy.DiplomacyMap, cancel *atomic.Bool, deadline time.Time) (res *WorkerResult) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Int("worker", worker).Interface("panic", r).Msg("search worker failed; discarding its results")
			res = nil
		}
	}()

	workerCfg := cfg
	workerCfg.Seed = cfg.Seed + uint64(worker)*seedStride

	s := NewMCTS(workerCfg, coalition, priorities, m, cancel)
	return s.Run(gs, deadline)
}

// mergeResults combines worker rankings. Candidates with the same order
// fingerprint merge: visits sum, expected value becomes a visits-weighted
// mean, the immediate score keeps its maximum, standard deviations
// average, and the confidence label is recomputed from merged visits. The
// merge is associative and commutative, so the final ranking does not
// depend on worker completion order.
func mergeResults(results []*WorkerResult) *Result {
	type accum struct {
		move    RankedMove
		evs     []float64
		weights []float64
		stdevs  []float64
		visits  int
	}

	merged := &Result{}
	table := NewTable(0)
	byFingerprint := make(map[string]*accum)
	var order []string

	for _, wr := range results {
		if wr == nil {
			continue
		}
		merged.Simulations += wr.Simulations
		table.Merge(wr.Table)

		for _, mv := range wr.Moves {
			fp := Fingerprint(mv.CoalitionOrders)
			a, ok := byFingerprint[fp]
			if !ok {
				a = &accum{move: mv}
				byFingerprint[fp] = a
				order = append(order, fp)
			}
			a.evs = append(a.evs, mv.ExpectedValue)
			a.weights = append(a.weights, float64(mv.Confidence.Visits))
			a.stdevs = append(a.stdevs, mv.Confidence.StdDev)
			a.visits += mv.Confidence.Visits
			if mv.Score > a.move.Score {
				a.move.Score = mv.Score
				a.move.Fitness = mv.Fitness
			}
		}
	}

	moves := make([]RankedMove, 0, len(order))
	for _, fp := range order {
		a := byFingerprint[fp]
		mv := a.move
		mv.ExpectedValue = stat.Mean(a.evs, a.weights)
		stdDev := stat.Mean(a.stdevs, nil)
		mv.Confidence = confidenceFor(a.visits, stdDev)
		moves = append(moves, mv)
	}
	sort.SliceStable(moves, func(i, j int) bool {
		return moves[i].ExpectedValue > moves[j].ExpectedValue
	})
	if len(moves) > TopMoves {
		moves = moves[:TopMoves]
	}
	for i := range moves {
		moves[i].Rank = i + 1
	}

	merged.Moves = moves
	merged.TableSize = table.Len()
	return merged
}
