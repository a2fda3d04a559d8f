package sweeper

import (
	"context"
	"log"
	"time"

	"github.com/example/printshop/internal/domain/issue"
	"github.com/example/printshop/internal/infrastructure/store"
	"github.com/example/printshop/internal/readmodel"
)

// Sweeper auto-closes issues that have been waiting on customer input
// for too long. An issue in info_requested past the stale window is
// closed and concluded by "system" with reason "stale".
type Sweeper struct {
	issueSvc   *issue.Service
	readStore  store.ReadStoreInterface
	interval   time.Duration
	staleAfter time.Duration
}

func New(issueSvc *issue.Service, readStore store.ReadStoreInterface, interval, staleAfter time.Duration) *Sweeper {
	return &Sweeper{
		issueSvc:   issueSvc,
		readStore:  readStore,
		interval:   interval,
		staleAfter: staleAfter,
	}
}

// Run sweeps on a ticker until the context is cancelled
func (s *Sweeper) Run(ctx context.Context) {
	log.Printf("[Sweeper] Running every %s, closing issues stale for %s", s.interval, s.staleAfter)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("[Sweeper] Stopped")
			return
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

// Sweep closes every stale info_requested issue once
func (s *Sweeper) Sweep(ctx context.Context) {
	cutoff := time.Now().Add(-s.staleAfter)
	stale := s.listStale(cutoff)
	if len(stale) == 0 {
		return
	}

	log.Printf("[Sweeper] Found %d stale issue(s)", len(stale))
	for _, iss := range stale {
		if err := s.issueSvc.Close(ctx, iss.ID, issue.ConcludedBySystem, "stale"); err != nil {
			log.Printf("[Sweeper] Failed to close issue %s: %v", iss.ID, err)
			continue
		}
		if err := s.issueSvc.Conclude(ctx, iss.ID, issue.ConcludedBySystem, "stale"); err != nil {
			log.Printf("[Sweeper] Failed to conclude issue %s: %v", iss.ID, err)
			continue
		}
		log.Printf("[Sweeper] Auto-closed stale issue %s (info requested at %s)", iss.ID, iss.InfoRequestedAt)
	}
}

func (s *Sweeper) listStale(cutoff time.Time) []*readmodel.IssueReadModel {
	if pgStore, ok := s.readStore.(*store.PostgresReadStore); ok {
		return pgStore.ListStaleInfoRequested(cutoff)
	}

	items, err := s.readStore.GetAll("issues")
	if err != nil {
		log.Printf("[Sweeper] Failed to list issues: %v", err)
		return nil
	}

	var stale []*readmodel.IssueReadModel
	for _, item := range items {
		iss := item.(*readmodel.IssueReadModel)
		if iss.Status != string(issue.StatusInfoRequested) || iss.IsConcluded {
			continue
		}
		if iss.InfoRequestedAt == nil || !iss.InfoRequestedAt.Before(cutoff) {
			continue
		}
		stale = append(stale, iss)
	}
	return stale
}
