package usecase

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"sort"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"podads/internal/core/auction"
	"podads/internal/core/brand"
	"podads/internal/core/domain"
	"podads/internal/core/filter"
	"podads/internal/core/port"
	"podads/internal/core/rng"
	"podads/internal/metrics"
)

const (
	trackingBaseURL = "https://tracking.podads.lab/events"
	noFillReason    = "No eligible candidates after filtering"
)

// DecisionUseCase drives the decision pipeline: Request, Sourcing, Filters,
// Auction, Serve. Each Decide call is a pure function of (request, seed,
// catalog snapshot) apart from wall-clock sampling used for reporting.
type DecisionUseCase struct {
	catalog port.CatalogRepository
	chain   filter.Chain
	logger  *slog.Logger
	metrics *metrics.Metrics

	// now supplies wall-clock samples for the decision timestamp and
	// stage latencies. Injectable so determinism tests can pin it.
	now func() time.Time
}

// NewDecisionUseCase creates the pipeline over the given catalog and filter
// chain. A nil logger discards logs; nil metrics disable instrumentation.
func NewDecisionUseCase(catalog port.CatalogRepository, chain filter.Chain, logger *slog.Logger, m *metrics.Metrics) *DecisionUseCase {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &DecisionUseCase{
		catalog: catalog,
		chain:   chain,
		logger:  logger,
		metrics: m,
		now:     time.Now,
	}
}

// WithClock replaces the wall-clock source. Intended for tests.
func (u *DecisionUseCase) WithClock(now func() time.Time) *DecisionUseCase {
	u.now = now
	return u
}

// Decide evaluates one request against the catalog under the given seed.
func (u *DecisionUseCase) Decide(ctx context.Context, req domain.AdRequest, seed int64) (*domain.AdDecision, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	decisionID := "dec-" + req.RequestID + "-" + strconv.FormatInt(seed, 10)
	rnd := rng.New(seed)
	startedAt := u.now()
	stages := make([]domain.PipelineStage, 0, 5)

	u.logger.Debug("ad decision started",
		slog.String("decision_id", decisionID),
		slog.String("request_id", req.RequestID),
		slog.String("category", req.Podcast.Category),
		slog.String("slot_type", req.Slot.Type),
	)
	u.metrics.IncRequest(req.Podcast.Category, req.Listener.Tier)

	// Stage 1: Request. Parsing and validation already happened at the
	// boundary; the stage exists so the trace covers the full pipeline.
	stages = append(stages, u.stage("Request", u.now(),
		req.Podcast.Category+" / "+req.Slot.Type,
		"Request received for "+req.Podcast.Show,
		map[string]any{"requestId": req.RequestID},
	))

	// Stage 2: Sourcing.
	sourcingStart := u.now()
	candidates, err := u.catalog.LoadCandidates(ctx, req.Podcast.Category)
	if err != nil {
		return nil, fmt.Errorf("load candidates: %w", err)
	}
	u.metrics.ObserveCandidates(len(candidates))
	stages = append(stages, u.stage("Sourcing", sourcingStart,
		"Category: "+req.Podcast.Category,
		fmt.Sprintf("Found %d candidate ads", len(candidates)),
		map[string]any{"candidateCount": len(candidates)},
	))

	// Stage 3: Filters.
	filterStart := u.now()
	filterResults := make(map[string]map[string]domain.FilterResult, len(candidates))
	passed := make([]domain.Candidate, 0, len(candidates))
	filterFailures := make(map[string]int)
	for _, cand := range candidates {
		results, ok := u.chain.Run(req, cand, rnd)
		filterResults[cand.ID()] = results
		if ok {
			passed = append(passed, cand)
			continue
		}
		for name, res := range results {
			if !res.Passed {
				filterFailures[name]++
				u.metrics.IncFilterDrop(name)
			}
		}
	}
	dropped := len(candidates) - len(passed)
	stages = append(stages, u.stage("Filters", filterStart,
		fmt.Sprintf("%d candidates", len(candidates)),
		fmt.Sprintf("%d passed, %d dropped", len(passed), dropped),
		map[string]any{
			"totalCandidates": len(candidates),
			"passedCount":     len(passed),
			"droppedCount":    dropped,
			"filterFailures":  filterFailures,
		},
	))

	// Stage 4: Auction.
	auctionStart := u.now()
	result := auction.Run(req, passed, filterResults)
	all := mergeFailedCandidates(result.Ranked, candidates, filterResults)
	auctionOutput := "No winner"
	debug := map[string]any{"scoredCount": len(result.Ranked)}
	if result.Winner != nil {
		auctionOutput = fmt.Sprintf("Winner: %s (%s) - score: %.2f",
			result.Winner.BrandName, result.Winner.CampaignID, result.Winner.Score.FinalScore)
		debug["topScore"] = result.Winner.Score.FinalScore
	}
	stages = append(stages, u.stage("Auction", auctionStart,
		fmt.Sprintf("%d eligible candidates", len(passed)),
		auctionOutput,
		debug,
	))

	// Stage 5: Serve.
	serveStart := u.now()
	decision := &domain.AdDecision{
		DecisionID: decisionID,
		RequestID:  req.RequestID,
		Seed:       seed,
		Timestamp:  startedAt,
		Candidates: all,
	}
	serveInput, serveOutput := "No winner", "No fill"
	serveDebug := map[string]any{"served": false}
	if result.Winner != nil {
		serve := u.buildServeInstruction(decisionID, *result.Winner, passed, result.PricePaid)
		decision.Winner = &domain.Winner{Candidate: *result.Winner, Serve: serve}
		serveInput = fmt.Sprintf("Winner: %s (%s)", result.Winner.BrandName, result.Winner.CampaignID)
		serveOutput = fmt.Sprintf("Serving %s creative %s", serve.BrandName, serve.CreativeID)
		serveDebug = map[string]any{"served": true, "pricePaid": serve.PricePaid}
	} else {
		decision.NoFillReason = noFillReason
	}
	stages = append(stages, u.stage("Serve", serveStart, serveInput, serveOutput, serveDebug))
	decision.Stages = stages

	outcome := "fill"
	if decision.Winner == nil {
		outcome = "no_fill"
	}
	u.metrics.IncDecision(outcome)
	u.logger.Info("ad decision completed",
		slog.String("decision_id", decisionID),
		slog.String("outcome", outcome),
		slog.Int("candidates", len(candidates)),
		slog.Int("passed", len(passed)),
	)
	return decision, nil
}

// DecideBatch evaluates the request under count consecutive seeds starting
// at seed. Decisions share the read-only catalog snapshot and run
// concurrently; results come back in seed order.
func (u *DecisionUseCase) DecideBatch(ctx context.Context, req domain.AdRequest, seed int64, count int) ([]*domain.AdDecision, error) {
	if count <= 0 {
		return nil, fmt.Errorf("%w: batch count must be positive, got %d", domain.ErrInvalidRequest, count)
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	decisions := make([]*domain.AdDecision, count)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := 0; i < count; i++ {
		i := i
		g.Go(func() error {
			d, err := u.Decide(ctx, req, seed+int64(i))
			if err != nil {
				return err
			}
			decisions[i] = d
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return decisions, nil
}

// stage closes out one pipeline stage, sampling its latency from start.
func (u *DecisionUseCase) stage(name string, start time.Time, input, output string, debug map[string]any) domain.PipelineStage {
	elapsed := u.now().Sub(start)
	u.metrics.ObserveStage(name, elapsed)
	u.logger.Debug("stage completed",
		slog.String("stage", name),
		slog.Float64("latency_ms", float64(elapsed)/float64(time.Millisecond)),
	)
	return domain.PipelineStage{
		StageName:     name,
		LatencyMs:     float64(elapsed) / float64(time.Millisecond),
		InputSummary:  input,
		OutputSummary: output,
		DebugPayload:  debug,
	}
}

// mergeFailedCandidates appends filter-failed candidates with zeroed,
// display-only scores so the trace keeps the full candidate universe, then
// re-sorts; zero scores rank failed candidates below every passed one.
func mergeFailedCandidates(ranked []domain.CandidateWithScore, candidates []domain.Candidate, filterResults map[string]map[string]domain.FilterResult) []domain.CandidateWithScore {
	all := make([]domain.CandidateWithScore, len(ranked), len(candidates))
	copy(all, ranked)
	for _, cand := range candidates {
		results := filterResults[cand.ID()]
		failed := false
		for _, res := range results {
			if !res.Passed {
				failed = true
				break
			}
		}
		if !failed {
			continue
		}
		all = append(all, domain.CandidateWithScore{
			CandidateID:      cand.ID(),
			CampaignID:       cand.Campaign.ID,
			CampaignName:     cand.Campaign.Name,
			BrandName:        brand.FromCampaignName(cand.Campaign.Name),
			CreativeID:       cand.Creative.ID,
			FilterResults:    results,
			Score:            domain.ZeroScore(cand.Campaign.BidCPM),
			PassedAllFilters: false,
		})
	}
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Score.FinalScore > all[j].Score.FinalScore
	})
	return all
}

// buildServeInstruction assembles the serve payload for the winner:
// creative asset, deterministic tracking URLs derived from the decision id,
// and the second-price settlement.
func (u *DecisionUseCase) buildServeInstruction(decisionID string, winner domain.CandidateWithScore, passed []domain.Candidate, pricePaid int64) domain.ServeInstruction {
	var winning domain.Candidate
	for _, cand := range passed {
		if cand.ID() == winner.CandidateID {
			winning = cand
			break
		}
	}
	base := trackingBaseURL + "/" + decisionID
	return domain.ServeInstruction{
		CreativeID:      winner.CreativeID,
		CampaignID:      winner.CampaignID,
		CampaignName:    winner.CampaignName,
		BrandName:       winner.BrandName,
		AssetURL:        winning.Creative.AssetURL,
		DurationSeconds: winning.Creative.DurationSeconds,
		TrackingURLs: domain.TrackingURLs{
			Impression: base + "/impression",
			Quartiles: []string{
				base + "/quartile/25",
				base + "/quartile/50",
				base + "/quartile/75",
				base + "/quartile/100",
			},
			Complete: base + "/complete",
			Click:    base + "/click",
		},
		PricePaid: pricePaid,
	}
}
