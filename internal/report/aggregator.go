package report

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/rohankatakam/tslens/internal/census"
	"github.com/rohankatakam/tslens/internal/churn"
	"github.com/rohankatakam/tslens/internal/logging"
)

const snapshotKey = "snapshot"

// CensusRunner counts typed and dynamic files under a root.
type CensusRunner interface {
	Scan(ctx context.Context, root string) (census.FileCount, error)
}

// ChurnRunner ranks JavaScript files under a root by commit frequency.
type ChurnRunner interface {
	ComputeChurn(ctx context.Context, root string) ([]churn.ChangeRecord, error)
}

// Options tune caching and signal handling.
type Options struct {
	// CacheTTL bounds how long a snapshot is served without recomputation.
	// Zero keeps it until invalidated.
	CacheTTL time.Duration
	// Debounce is the minimum interval between signal-driven refreshes.
	Debounce time.Duration
}

// Aggregator runs the census and churn analyzers for one root and serves the
// most recently completed result.
type Aggregator struct {
	root   string
	census CensusRunner
	churn  ChurnRunner
	logger *logrus.Logger

	snapshots *cache.Cache
	limiter   *rate.Limiter
	signals   chan struct{}

	mu          sync.Mutex
	generation  uint64
	notified    uint64 // Notify calls so far
	subscribers map[chan *Snapshot]struct{}
}

// NewAggregator creates an Aggregator for root.
func NewAggregator(root string, censusRunner CensusRunner, churnRunner ChurnRunner, opts Options, logger *logrus.Logger) *Aggregator {
	if logger == nil {
		logger = logging.Discard()
	}
	if abs, err := filepath.Abs(root); err == nil {
		root = abs
	}

	limit := rate.Inf
	if opts.Debounce > 0 {
		limit = rate.Every(opts.Debounce)
	}

	return &Aggregator{
		root:        root,
		census:      censusRunner,
		churn:       churnRunner,
		logger:      logger,
		snapshots:   cache.New(opts.CacheTTL, 2*opts.CacheTTL),
		limiter:     rate.NewLimiter(limit, 1),
		signals:     make(chan struct{}, 1),
		subscribers: make(map[chan *Snapshot]struct{}),
	}
}

// Root returns the absolute project root.
func (a *Aggregator) Root() string {
	return a.root
}

// Refresh runs both analyzers concurrently and stores the result. Analyzer
// failures are recorded on the snapshot; the returned error is non-nil only
// when ctx ends before both analyzers finish, in which case nothing is stored.
func (a *Aggregator) Refresh(ctx context.Context) (*Snapshot, error) {
	snap := &Snapshot{Root: a.root, StartedAt: time.Now()}
	epoch := a.notifyEpoch()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		count, err := a.census.Scan(gctx, a.root)
		if isContextErr(err) {
			return err
		}
		snap.Census = count
		snap.TypedPercentage = count.Percentage()
		snap.CensusErr = err
		return nil
	})
	g.Go(func() error {
		records, err := a.churn.ComputeChurn(gctx, a.root)
		if isContextErr(err) {
			return err
		}
		snap.Churn = records
		snap.ChurnErr = err
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	snap.CompletedAt = time.Now()
	a.store(snap, epoch)
	return snap, nil
}

// store makes snap current. Whichever refresh completes last wins, except
// that a refresh overtaken by Notify is published but not cached, so the
// next Snapshot call rescans.
func (a *Aggregator) store(snap *Snapshot, epoch uint64) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.generation++
	snap.Generation = a.generation
	stale := epoch != a.notified
	if !stale {
		a.snapshots.Set(snapshotKey, snap, cache.DefaultExpiration)
	}

	fields := logrus.Fields{
		"root":       snap.Root,
		"generation": snap.Generation,
		"typed_pct":  snap.TypedPercentage,
		"churn":      len(snap.Churn),
		"duration":   snap.CompletedAt.Sub(snap.StartedAt),
		"stale":      stale,
	}
	if snap.CensusErr != nil {
		fields["census_error"] = snap.CensusErr.Error()
	}
	if snap.ChurnErr != nil {
		fields["churn_error"] = snap.ChurnErr.Error()
	}
	a.logger.WithFields(fields).Debug("Snapshot stored")

	for ch := range a.subscribers {
		publish(ch, snap)
	}
}

// publish delivers snap, replacing an undelivered older snapshot.
func publish(ch chan *Snapshot, snap *Snapshot) {
	select {
	case ch <- snap:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- snap:
	default:
	}
}

// Current returns the cached snapshot without recomputing.
func (a *Aggregator) Current() (*Snapshot, bool) {
	v, ok := a.snapshots.Get(snapshotKey)
	if !ok {
		return nil, false
	}
	return v.(*Snapshot), true
}

// Snapshot returns the cached snapshot, refreshing when none is cached.
func (a *Aggregator) Snapshot(ctx context.Context) (*Snapshot, error) {
	if snap, ok := a.Current(); ok {
		return snap, nil
	}
	return a.Refresh(ctx)
}

// GetTypedPercentage returns the typed percentage of the current snapshot.
func (a *Aggregator) GetTypedPercentage(ctx context.Context) (float64, error) {
	snap, err := a.Snapshot(ctx)
	if err != nil {
		return 0, err
	}
	if snap.CensusErr != nil {
		return 0, snap.CensusErr
	}
	return snap.TypedPercentage, nil
}

// GetChurnRanking returns a copy of the churn ranking of the current
// snapshot.
func (a *Aggregator) GetChurnRanking(ctx context.Context) ([]churn.ChangeRecord, error) {
	snap, err := a.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	if snap.ChurnErr != nil {
		return nil, snap.ChurnErr
	}
	ranking := make([]churn.ChangeRecord, len(snap.Churn))
	copy(ranking, snap.Churn)
	return ranking, nil
}

// Invalidate drops the cached snapshot.
func (a *Aggregator) Invalidate() {
	a.snapshots.Delete(snapshotKey)
}

// Notify signals that watched files changed. The cache is invalidated and
// Run schedules a refresh; signals arriving before it runs are coalesced.
func (a *Aggregator) Notify() {
	a.mu.Lock()
	a.notified++
	a.mu.Unlock()

	a.Invalidate()
	select {
	case a.signals <- struct{}{}:
	default:
	}
}

// Subscribe returns a channel receiving every stored snapshot. Slow readers
// only see the latest one. Call the returned func to unsubscribe.
func (a *Aggregator) Subscribe() (<-chan *Snapshot, func()) {
	ch := make(chan *Snapshot, 1)

	a.mu.Lock()
	a.subscribers[ch] = struct{}{}
	a.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			a.mu.Lock()
			delete(a.subscribers, ch)
			a.mu.Unlock()
		})
	}
}

// Run refreshes once, then again for each Notify, until ctx is done. Refreshes
// are spaced at least Options.Debounce apart.
func (a *Aggregator) Run(ctx context.Context) error {
	if _, err := a.Refresh(ctx); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-a.signals:
		}

		if err := a.limiter.Wait(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}
		// Drop a signal that arrived while waiting; this refresh covers it.
		select {
		case <-a.signals:
		default:
		}

		if _, err := a.Refresh(ctx); err != nil {
			return err
		}
	}
}

func (a *Aggregator) notifyEpoch() uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.notified
}

func isContextErr(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
