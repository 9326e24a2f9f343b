// Command stabalyzer analyzes a Diplomacy position scraped from a game
// page and prints ranked order recommendations for a coalition.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/FTWinston/Stabalyzer/internal/config"
	"github.com/FTWinston/Stabalyzer/internal/eval"
	"github.com/FTWinston/Stabalyzer/internal/logger"
	"github.com/FTWinston/Stabalyzer/internal/scrape"
	"github.com/FTWinston/Stabalyzer/internal/search"
	"github.com/FTWinston/Stabalyzer/pkg/diplomacy"
)

// priorityFlags collects repeatable -priority flags.
type priorityFlags []string

func (p *priorityFlags) String() string     { return strings.Join(*p, "; ") }
func (p *priorityFlags) Set(v string) error { *p = append(*p, v); return nil }

func main() {
	os.Exit(run())
}

func run() int {
	defaults := config.Load()

	var (
		url        string
		coalition  string
		optimize   string
		maxDepth   int
		searchSecs int
		threads    int
		seed       uint64
		verbose    bool
		priorities priorityFlags
	)

	flag.StringVar(&url, "url", "", "game page URL to scrape (required)")
	flag.StringVar(&coalition, "coalition", "", "coalition specification, e.g. England+France (required)")
	flag.StringVar(&optimize, "optimize", "", "identifier to optimize for (defaults to the first listed coalition)")
	flag.IntVar(&maxDepth, "depth", defaults.MaxDepth, "rollout depth in movement turns")
	flag.IntVar(&searchSecs, "time", int(defaults.SearchTime/time.Second), "search time in seconds")
	flag.IntVar(&threads, "threads", defaults.Threads, "parallel search workers")
	flag.Uint64Var(&seed, "seed", 0, "PRNG seed (0 = time-based)")
	flag.BoolVar(&verbose, "verbose", false, "enable debug logging")
	flag.Var(&priorities, "priority", "priority adjustment '<deny|allow> <power> <region>' (repeatable)")
	flag.Parse()

	logger.Init(verbose)

	if url == "" || coalition == "" {
		fmt.Fprintln(os.Stderr, "stabalyzer: -url and -coalition are required")
		flag.Usage()
		return 1
	}

	coalitions, err := eval.ParseCoalitions(coalition)
	if err != nil {
		log.Error().Err(err).Msg("invalid coalition")
		return 1
	}
	co, err := eval.SelectCoalition(coalitions, optimize)
	if err != nil {
		log.Error().Err(err).Msg("invalid optimize-for identifier")
		return 1
	}

	m := diplomacy.StandardMap()
	var prios []eval.Priority
	for _, spec := range priorities {
		p, err := eval.ParsePriority(spec, m)
		if err != nil {
			log.Error().Err(err).Msg("invalid priority")
			return 1
		}
		prios = append(prios, p)
	}

	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}

	// SIGINT fires the cancellation signal; the search returns its best
	// partial ranking, which is still printed.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sig
		log.Info().Msg("interrupted; returning best partial result")
		cancel()
	}()

	client := scrape.NewClient()
	game, err := client.Fetch(ctx, url)
	if err != nil {
		log.Error().Err(err).Msg("scrape failed")
		return 1
	}
	gs, err := game.GameState()
	if err != nil {
		log.Error().Err(err).Msg("scraped state is unusable")
		return 1
	}

	log.Info().
		Str("game", game.ID).
		Str("coalition", co.Name).
		Int("year", gs.Turn.Year).
		Str("season", string(gs.Turn.Season)).
		Str("phase", string(gs.Turn.Phase)).
		Msg("analyzing position")

	cfg := search.Config{
		MaxDepth:   maxDepth,
		Samples:    defaults.Samples,
		SearchTime: time.Duration(searchSecs) * time.Second,
		Seed:       seed,
		Threads:    threads,
	}
	result, err := search.Analyze(ctx, gs, co, prios, cfg, nil)
	if err != nil && len(result.Moves) == 0 {
		log.Error().Err(err).Msg("analysis failed")
		return 1
	}

	printResult(result, co, m)
	return 0
}

func printResult(result *search.Result, co eval.Coalition, m *diplomacy.DiplomacyMap) {
	fmt.Printf("Recommended orders for %s\n", co.Name)
	for _, mv := range result.Moves {
		fmt.Printf("\n#%d  expected value %.3f  score %d  confidence %s (visits %d, stdev %.3f)\n",
			mv.Rank, mv.ExpectedValue, mv.Score, mv.Confidence.Level, mv.Confidence.Visits, mv.Confidence.StdDev)
		if mv.Fitness.Win {
			fmt.Printf("    terminal win (%s)\n", mv.Fitness.WinKind)
		}
		for _, line := range diplomacy.FormatOrders(mv.CoalitionOrders, m) {
			fmt.Printf("    %s\n", line)
		}
		if len(mv.OpponentOrders) > 0 {
			fmt.Println("  predicted opponent orders:")
			for _, line := range diplomacy.FormatOrders(mv.OpponentOrders, m) {
				fmt.Printf("    %s\n", line)
			}
		}
		if len(mv.PredictedTurns) > 1 {
			for _, turn := range mv.PredictedTurns[1:] {
				fmt.Printf("  then %d %s:\n", turn.Turn.Year, turn.Turn.Season)
				for _, line := range diplomacy.FormatOrders(turn.CoalitionOrders, m) {
					fmt.Printf("    %s\n", line)
				}
			}
		}
	}
	fmt.Printf("\n%d simulations in %d ms\n", result.Simulations, result.Elapsed.Milliseconds())
}
