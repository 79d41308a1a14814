// Package renorm keeps stored canonical keys in sync with the current
// normalization rules. The rule tables evolve between releases (new tracker
// parameters, new AMP conventions), so targets recorded under an older
// vocabulary can drift apart from what the same URL normalizes to today.
package renorm

import (
	"context"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"linknorm/internal/models"
	"linknorm/internal/storage"
	"linknorm/internal/urlutil"
)

// Sweeper periodically re-normalizes every stored target and repoints or
// merges the ones whose canonical key changed.
type Sweeper struct {
	store          storage.Storer
	opts           urlutil.Options
	interval       time.Duration
	maxConcurrency int
	stopChan       chan struct{}
	wg             sync.WaitGroup
}

// New creates a new Sweeper. An interval of zero means sweep once at
// startup and never again.
func New(store storage.Storer, opts urlutil.Options, interval time.Duration, maxConcurrency int) *Sweeper {
	if maxConcurrency < 1 {
		maxConcurrency = 1
	}
	return &Sweeper{
		store:          store,
		opts:           opts,
		interval:       interval,
		maxConcurrency: maxConcurrency,
		stopChan:       make(chan struct{}),
	}
}

// Start begins the periodic sweeping process.
func (s *Sweeper) Start() {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		// Always sweep once on startup so a rules upgrade takes effect
		// without waiting a full interval.
		s.Sweep(context.Background())

		if s.interval <= 0 {
			return
		}
		log.Printf("starting renormalization sweeper with interval: %s", s.interval)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.Sweep(context.Background())
			case <-s.stopChan:
				log.Println("stopping renormalization sweeper...")
				return
			}
		}
	}()
}

// Stop gracefully shuts down the sweeper.
func (s *Sweeper) Stop() {
	close(s.stopChan)
	s.wg.Wait()
	log.Println("renormalization sweeper stopped")
}

// Sweep re-normalizes all stored targets once. Targets whose canonical key
// is already current are left alone.
func (s *Sweeper) Sweep(ctx context.Context) {
	targets, err := s.store.GetAllTargets(ctx)
	if err != nil {
		log.Printf("error fetching targets for renormalization: %v", err)
		return
	}
	if len(targets) == 0 {
		return
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxConcurrency)

	var changed atomic.Int64
	for _, t := range targets {
		target := t
		g.Go(func() error {
			if s.renormalize(gctx, target) {
				changed.Add(1)
			}
			return nil
		})
	}
	g.Wait()

	if n := changed.Load(); n > 0 {
		log.Printf("renormalization sweep repointed %d of %d targets", n, len(targets))
	}
}

// renormalize recomputes one target's canonical key and persists the change
// when it differs. Reports whether anything moved.
func (s *Sweeper) renormalize(ctx context.Context, target models.Target) bool {
	canonical := urlutil.Normalize(target.URL, s.opts)
	if canonical == target.CanonicalURL {
		return false
	}

	host, _ := urlutil.NormalizedHostname(target.URL, s.opts.NormalizeAMP, s.opts.StripLangSubdomains)
	if err := s.store.ReplaceCanonicalURL(ctx, target.ID, canonical, host); err != nil {
		log.Printf("error repointing target %s: %v", target.ID, err)
		return false
	}
	return true
}
