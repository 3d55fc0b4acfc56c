package worker

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/aurelius/mintbid/internal/adapters/ai"
	"github.com/aurelius/mintbid/internal/domain/auctions"
	"github.com/aurelius/mintbid/internal/domain/consignment"
	"github.com/aurelius/mintbid/internal/domain/metals"
)

const (
	// closeSweepSpec fires the auction close sweep every minute.
	closeSweepSpec = "* * * * *"
	// metalsRefreshSpec polls the spot price feed every five minutes.
	metalsRefreshSpec = "*/5 * * * *"
	// sourceReloadInterval re-reads scrape-source configuration so newly
	// registered sources get scheduled without a restart.
	sourceReloadInterval = 10 * time.Minute
)

// Worker runs the scheduled background jobs: the auction close sweep, the
// metals price poll, and the per-source comps scrape.
type Worker struct {
	auctions *auctions.Service
	metals   *metals.Service
	sources  consignment.SourceRepository
	scraper  *ai.CompsScraper
	logger   *slog.Logger

	cron *cron.Cron

	mu            sync.Mutex
	sourceEntries map[uuid.UUID]sourceEntry
}

// sourceEntry remembers the schedule a source was registered with so an
// edited schedule triggers a re-add.
type sourceEntry struct {
	entryID  cron.EntryID
	schedule string
}

// New creates a new worker
func New(
	auctionService *auctions.Service,
	metalsService *metals.Service,
	sources consignment.SourceRepository,
	scraper *ai.CompsScraper,
	logger *slog.Logger,
) *Worker {
	return &Worker{
		auctions:      auctionService,
		metals:        metalsService,
		sources:       sources,
		scraper:       scraper,
		logger:        logger,
		cron:          cron.New(),
		sourceEntries: make(map[uuid.UUID]sourceEntry),
	}
}

// Run schedules all jobs and blocks until ctx is cancelled. Returns nil on
// clean shutdown.
func (w *Worker) Run(ctx context.Context) error {
	if _, err := w.cron.AddFunc(closeSweepSpec, func() { w.closeSweep(ctx) }); err != nil {
		return err
	}
	if _, err := w.cron.AddFunc(metalsRefreshSpec, func() { w.refreshMetals(ctx) }); err != nil {
		return err
	}

	if err := w.reloadSources(ctx); err != nil {
		// Sources are reloaded periodically; a failed initial load is not
		// fatal for the sweep and poll jobs.
		w.logger.Error("Failed to load scrape sources", "error", err)
	}

	w.cron.Start()
	w.logger.Info("Worker started")

	ticker := time.NewTicker(sourceReloadInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			stopCtx := w.cron.Stop()
			<-stopCtx.Done()
			w.logger.Info("Worker stopped")
			return nil
		case <-ticker.C:
			if err := w.reloadSources(ctx); err != nil {
				w.logger.Error("Failed to reload scrape sources", "error", err)
			}
		}
	}
}

func (w *Worker) closeSweep(ctx context.Context) {
	results, err := w.auctions.CloseDue(ctx, time.Now())
	if err != nil {
		w.logger.Error("Auction close sweep failed", "error", err)
		return
	}
	for _, result := range results {
		w.logger.Info("Auction closed",
			"auction_id", result.AuctionID,
			"status", result.Status,
		)
	}
}

func (w *Worker) refreshMetals(ctx context.Context) {
	if err := w.metals.Refresh(ctx); err != nil {
		w.logger.Error("Metals refresh failed", "error", err)
	}
}

// reloadSources synchronizes cron entries with the enabled scrape sources:
// new sources get scheduled, edited schedules get re-added, removed or
// disabled sources get unscheduled.
func (w *Worker) reloadSources(ctx context.Context) error {
	sources, err := w.sources.ListEnabledSources(ctx)
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	seen := make(map[uuid.UUID]bool, len(sources))
	for _, source := range sources {
		seen[source.ID] = true
		if existing, scheduled := w.sourceEntries[source.ID]; scheduled {
			if existing.schedule == source.Schedule {
				continue
			}
			w.cron.Remove(existing.entryID)
			delete(w.sourceEntries, source.ID)
		}

		src := source
		entryID, addErr := w.cron.AddFunc(src.Schedule, func() { w.scrapeSource(ctx, src) })
		if addErr != nil {
			w.logger.Error("Failed to schedule scrape source",
				"source_id", src.ID,
				"schedule", src.Schedule,
				"error", addErr,
			)
			continue
		}
		w.sourceEntries[src.ID] = sourceEntry{entryID: entryID, schedule: src.Schedule}
		w.logger.Info("Scrape source scheduled", "source_id", src.ID, "schedule", src.Schedule)
	}

	for sourceID, entry := range w.sourceEntries {
		if !seen[sourceID] {
			w.cron.Remove(entry.entryID)
			delete(w.sourceEntries, sourceID)
			w.logger.Info("Scrape source unscheduled", "source_id", sourceID)
		}
	}

	return nil
}

func (w *Worker) scrapeSource(ctx context.Context, source *consignment.Source) {
	comps, err := w.scraper.Scrape(ctx, source)
	if err != nil {
		w.logger.Error("Comps scrape failed", "source_id", source.ID, "url", source.URL, "error", err)
		return
	}

	w.logger.Info("Comps scraped",
		"source_id", source.ID,
		"client_id", source.ClientID,
		"count", len(comps),
		"median_price_cents", medianPrice(comps),
	)
}

// medianPrice returns the median sold price across comps, or 0 when empty.
func medianPrice(comps []ai.Comp) int64 {
	if len(comps) == 0 {
		return 0
	}
	prices := make([]int64, len(comps))
	for i, comp := range comps {
		prices[i] = comp.PriceCents
	}
	sort.Slice(prices, func(i, j int) bool { return prices[i] < prices[j] })

	mid := len(prices) / 2
	if len(prices)%2 == 0 {
		return (prices[mid-1] + prices[mid]) / 2
	}
	return prices[mid]
}
