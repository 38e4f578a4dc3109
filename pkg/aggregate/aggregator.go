// Package aggregate compares pair rates across several deposit and settle
// routes, such as one coin offered on different networks.
package aggregate

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/cockroachdb/apd/v3"
	"github.com/rs/zerolog"

	"sideshift/pkg/core"
	"sideshift/pkg/exchange"
)

var decimalCtx = apd.BaseContext.WithPrecision(34)

// PairSource fetches the rate of one pair. *sideshift.Client satisfies it.
type PairSource interface {
	GetPair(ctx context.Context, from, to string, opts ...exchange.Option) *core.Response[core.Pair]
}

// Route is one deposit to settle combination, written as coin-network.
type Route struct {
	From string `json:"from"`
	To   string `json:"to"`
}

func (r Route) String() string {
	return r.From + " -> " + r.To
}

// Routes returns the cross product of deposit and settle coins, skipping
// routes that start and end on the same coin.
func Routes(from, to []string) []Route {
	routes := make([]Route, 0, len(from)*len(to))
	for _, f := range from {
		for _, t := range to {
			if f == t {
				continue
			}
			routes = append(routes, Route{From: f, To: t})
		}
	}
	return routes
}

// Aggregator fans pair requests out over a shared source.
type Aggregator struct {
	source     PairSource
	logger     zerolog.Logger
	mu         sync.RWMutex
	lastUpdate time.Time
	requests   int
	failures   int
}

func New(source PairSource) *Aggregator {
	return NewWithLogger(source, zerolog.Nop())
}

func NewWithLogger(source PairSource, logger zerolog.Logger) *Aggregator {
	return &Aggregator{
		source: source,
		logger: logger,
	}
}

// RouteResult holds the pair or error of a single route.
type RouteResult struct {
	Route Route      `json:"route"`
	Pair  *core.Pair `json:"pair,omitempty"`
	Error error      `json:"error,omitempty"`
}

// GetPairs fetches every route concurrently. Results keep the order of routes.
// Every request still passes the session rate limiter, so routes beyond the
// default ceiling fail with rate-limit errors.
func (a *Aggregator) GetPairs(ctx context.Context, routes []Route, opts ...exchange.Option) []RouteResult {
	type indexed struct {
		i      int
		result RouteResult
	}

	resultChan := make(chan indexed, len(routes))
	var wg sync.WaitGroup

	for i, route := range routes {
		wg.Add(1)
		go func(i int, route Route) {
			defer wg.Done()

			result := RouteResult{Route: route}

			select {
			case <-ctx.Done():
				result.Error = ctx.Err()
				resultChan <- indexed{i, result}
				return
			default:
			}

			pair, err := a.source.GetPair(ctx, route.From, route.To, opts...).Unwrap()
			if err != nil {
				result.Error = fmt.Errorf("get pair %s: %w", route, err)
				resultChan <- indexed{i, result}
				return
			}

			result.Pair = &pair
			resultChan <- indexed{i, result}
		}(i, route)
	}

	go func() {
		wg.Wait()
		close(resultChan)
	}()

	results := make([]RouteResult, len(routes))
	failures := 0
	for r := range resultChan {
		results[r.i] = r.result
		if r.result.Error != nil {
			failures++
			a.logger.Debug().Err(r.result.Error).Str("route", r.result.Route.String()).Msg("route failed")
		}
	}

	a.mu.Lock()
	a.lastUpdate = time.Now()
	a.requests += len(routes)
	a.failures += failures
	a.mu.Unlock()

	return results
}

// BestRate is the route with the highest rate among those that answered.
type BestRate struct {
	Route Route     `json:"route"`
	Pair  core.Pair `json:"pair"`
	// Worst is the answering route with the lowest rate.
	Worst     Route       `json:"worst"`
	WorstRate apd.Decimal `json:"worst_rate"`
	// Spread is best minus worst rate; SpreadPercent is relative to the worst.
	Spread        apd.Decimal `json:"spread"`
	SpreadPercent apd.Decimal `json:"spread_percent"`
	Considered    int         `json:"considered"`
}

// GetBestRate fetches all routes and picks the one settling the most per unit deposited.
func (a *Aggregator) GetBestRate(ctx context.Context, routes []Route, opts ...exchange.Option) (*BestRate, error) {
	results := a.GetPairs(ctx, routes, opts...)

	var best, worst *RouteResult
	considered := 0

	for i := range results {
		r := &results[i]
		if r.Error != nil || r.Pair == nil {
			continue
		}
		considered++

		if best == nil {
			best, worst = r, r
			continue
		}
		if r.Pair.Rate.Cmp(&best.Pair.Rate.Decimal) > 0 {
			best = r
		}
		if r.Pair.Rate.Cmp(&worst.Pair.Rate.Decimal) < 0 {
			worst = r
		}
	}

	if best == nil {
		return nil, fmt.Errorf("no route returned a rate out of %d", len(routes))
	}

	var spread apd.Decimal
	if _, err := decimalCtx.Sub(&spread, &best.Pair.Rate.Decimal, &worst.Pair.Rate.Decimal); err != nil {
		return nil, fmt.Errorf("calculate spread: %w", err)
	}

	var spreadPercent apd.Decimal
	if !worst.Pair.Rate.IsZero() {
		var hundred apd.Decimal
		hundred.SetInt64(100)
		if _, err := decimalCtx.Mul(&spreadPercent, &spread, &hundred); err != nil {
			return nil, fmt.Errorf("calculate spread percent multiply: %w", err)
		}
		if _, err := decimalCtx.Quo(&spreadPercent, &spreadPercent, &worst.Pair.Rate.Decimal); err != nil {
			return nil, fmt.Errorf("calculate spread percent divide: %w", err)
		}
	}

	return &BestRate{
		Route:         best.Route,
		Pair:          *best.Pair,
		Worst:         worst.Route,
		WorstRate:     worst.Pair.Rate.Decimal,
		Spread:        spread,
		SpreadPercent: spreadPercent,
		Considered:    considered,
	}, nil
}

// Ranked returns the answering routes ordered by rate, best first.
func Ranked(results []RouteResult) []RouteResult {
	ranked := make([]RouteResult, 0, len(results))
	for _, r := range results {
		if r.Error == nil && r.Pair != nil {
			ranked = append(ranked, r)
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Pair.Rate.Cmp(&ranked[j].Pair.Rate.Decimal) > 0
	})
	return ranked
}

// Stats counts the requests made through the aggregator.
type Stats struct {
	Requests   int       `json:"requests"`
	Failures   int       `json:"failures"`
	LastUpdate time.Time `json:"last_update"`
}

func (a *Aggregator) GetStats() *Stats {
	a.mu.RLock()
	defer a.mu.RUnlock()

	return &Stats{
		Requests:   a.requests,
		Failures:   a.failures,
		LastUpdate: a.lastUpdate,
	}
}
