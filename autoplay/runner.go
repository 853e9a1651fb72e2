// Package autoplay plays batches of unattended games and aggregates the
// outcomes. Allow computer vs computer matchups with different move
// selectors per seat, etc.
package autoplay

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aybabtme/uniplot/histogram"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
	"lukechampine.com/frand"

	"github.com/domino14/plybot/search"
	"github.com/domino14/plybot/stats"
)

// DriverFactory builds a fresh driver for one game. Workers never share
// drivers; each game gets its own table.
type DriverFactory[S any, M comparable, P comparable] func() (*search.Driver[S, M, P], error)

// Runner is the master struct for the batch self-play logic. Configure it
// fully before calling Run; the per-player selectors are read concurrently
// by the worker goroutines.
type Runner[S any, M comparable, P comparable] struct {
	factory     DriverFactory[S, M, P]
	selectors   map[P]search.MoveSelector[S, M, P]
	threads     int
	randomSeats bool

	gamesPlayed atomic.Uint64
}

// NewRunner instantiates a runner. Games are built by the factory and run
// one thread at a time unless SetThreads raises that.
func NewRunner[S any, M comparable, P comparable](factory DriverFactory[S, M, P]) *Runner[S, M, P] {
	return &Runner[S, M, P]{
		factory:   factory,
		selectors: make(map[P]search.MoveSelector[S, M, P]),
		threads:   1,
	}
}

// SetThreads sets how many games run concurrently. Each game still runs on
// a single goroutine.
func (r *Runner[S, M, P]) SetThreads(threads int) {
	if threads > 0 {
		r.threads = threads
	}
}

// SetSelector assigns the move selector used whenever p is on turn. Players
// without an assignment keep the driver's configured selector.
func (r *Runner[S, M, P]) SetSelector(p P, sel search.MoveSelector[S, M, P]) {
	r.selectors[p] = sel
}

// RandomizeSeating randomly swaps the two per-player selectors before each
// game, so a matchup is not biased by who moves first. It only applies when
// exactly two players have assigned selectors.
func (r *Runner[S, M, P]) RandomizeSeating(on bool) { r.randomSeats = on }

// GamesPlayed returns the number of games completed so far. Safe to read
// while a batch runs.
func (r *Runner[S, M, P]) GamesPlayed() uint64 { return r.gamesPlayed.Load() }

// Results aggregates a finished batch.
type Results[P comparable] struct {
	Games       int
	Wins        map[P]int
	Draws       int
	GameLengths []float64
	TreeSizes   []float64
	Elapsed     time.Duration
}

type outcome[P comparable] struct {
	winner   P
	drawn    bool
	plies    int
	treeSize int
}

// Run plays numGames games and tallies the outcomes. Canceling the context
// stops the batch early and returns the games finished so far.
func (r *Runner[S, M, P]) Run(ctx context.Context, numGames int) (*Results[P], error) {
	if numGames < 1 {
		return nil, fmt.Errorf("need at least one game, got %d", numGames)
	}
	log.Debug().Int("games", numGames).Int("threads", r.threads).Msg("starting-autoplay")
	r.gamesPlayed.Store(0)

	results := &Results[P]{Wins: make(map[P]int)}
	var mu sync.Mutex

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	ticker := errgroup.Group{}
	tickerDone := make(chan bool)
	ticker.Go(func() error {
		tick := time.NewTicker(10 * time.Second)
		defer tick.Stop()
		for {
			select {
			case <-tickerDone:
				return nil
			case <-tick.C:
				log.Info().Uint64("games-played", r.gamesPlayed.Load()).
					Int("games-requested", numGames).Msg("autoplay-progress")
			}
		}
	})

	start := time.Now()
	jobs := make(chan struct{}, r.threads)
	g := errgroup.Group{}
	for t := 0; t < r.threads; t++ {
		g.Go(func() error {
			for range jobs {
				out, err := r.playGame(ctx)
				if err != nil {
					if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
						return nil
					}
					cancel()
					return err
				}
				mu.Lock()
				if out.drawn {
					results.Draws++
				} else {
					results.Wins[out.winner]++
				}
				results.GameLengths = append(results.GameLengths, float64(out.plies))
				results.TreeSizes = append(results.TreeSizes, float64(out.treeSize))
				mu.Unlock()
				r.gamesPlayed.Add(1)
			}
			return nil
		})
	}

feed:
	for i := 0; i < numGames; i++ {
		select {
		case jobs <- struct{}{}:
		case <-ctx.Done():
			log.Info().Msg("got stop signal, not queueing more games")
			break feed
		}
	}
	close(jobs)

	err := g.Wait()
	close(tickerDone)
	ticker.Wait()
	if err != nil {
		return nil, err
	}

	results.Games = len(results.GameLengths)
	results.Elapsed = time.Since(start)
	gps := float64(results.Games) / results.Elapsed.Seconds()
	log.Info().Msgf("time taken: %v, games/s: %f, games: %d",
		results.Elapsed.Seconds(), gps, results.Games)
	return results, nil
}

// playGame runs a single game to completion on the calling goroutine,
// swapping in the on-turn player's selector before every decision.
func (r *Runner[S, M, P]) playGame(ctx context.Context) (outcome[P], error) {
	var out outcome[P]
	driver, err := r.factory()
	if err != nil {
		return out, err
	}
	seats := r.seatAssignments()
	for !driver.IsFinished() {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		if active, ok := driver.ActivePlayer(); ok {
			if sel, ok := seats[active]; ok {
				driver.SetMoveSelector(sel)
			}
		}
		mv, err := driver.ChooseMove()
		if err != nil {
			return out, err
		}
		if err := driver.CommitMove(mv); err != nil {
			return out, err
		}
		out.plies++
	}
	winner, ok, err := driver.Winner()
	if err != nil {
		return out, err
	}
	if ok {
		out.winner = winner
	} else {
		out.drawn = true
	}
	out.treeSize = driver.TreeSize()
	return out, nil
}

func (r *Runner[S, M, P]) seatAssignments() map[P]search.MoveSelector[S, M, P] {
	if !r.randomSeats || len(r.selectors) != 2 || frand.Intn(2) == 0 {
		return r.selectors
	}
	players := lo.Keys(r.selectors)
	return map[P]search.MoveSelector[S, M, P]{
		players[0]: r.selectors[players[1]],
		players[1]: r.selectors[players[0]],
	}
}

// Summary writes a human-readable report of the batch: win and draw
// tallies, game-length and tree-size statistics, and a histogram of game
// lengths.
func (res *Results[P]) Summary(w io.Writer) error {
	fmt.Fprintf(w, "Games played: %d\n", res.Games)
	if res.Games == 0 {
		return nil
	}

	players := lo.Keys(res.Wins)
	sort.Slice(players, func(i, j int) bool {
		return fmt.Sprint(players[i]) < fmt.Sprint(players[j])
	})
	for _, p := range players {
		n := res.Wins[p]
		fmt.Fprintf(w, "%v wins: %d (%.1f%%)\n", p, n, 100*float64(n)/float64(res.Games))
	}
	fmt.Fprintf(w, "Draws: %d (%.1f%%)\n", res.Draws, 100*float64(res.Draws)/float64(res.Games))

	var lengths, sizes stats.Statistic
	for _, l := range res.GameLengths {
		lengths.Push(l)
	}
	for _, s := range res.TreeSizes {
		sizes.Push(s)
	}
	fmt.Fprintf(w, "Game length: %.2f±%.2f plies\n",
		lengths.Mean(), stats.Z99*lengths.StandardError())
	fmt.Fprintf(w, "Final tree size: %.1f±%.1f positions\n",
		sizes.Mean(), stats.Z99*sizes.StandardError())

	fmt.Fprintf(w, "Game lengths:\n")
	hist := histogram.Hist(9, res.GameLengths)
	return histogram.Fprint(w, hist, histogram.Linear(40))
}
