package matching

import (
	"context"
	"time"

	"github.com/Gobusters/ectologger"

	"github.com/jeremyodell/bjj-tournament-tracker/pkg/models"
	"github.com/jeremyodell/bjj-tournament-tracker/pkg/tracing"
)

// GymLister is the slice of the source gym store the engine reads from
type GymLister interface {
	CandidateLister
	ListUnlinkedByOrg(ctx context.Context, org models.Org, afterExternalID string, limit int) ([]models.SourceGym, error)
}

// Linker merges two source gyms under a master gym
type Linker interface {
	Link(ctx context.Context, gymA, gymB *models.SourceGym) (*models.MasterGym, error)
}

// Reviewer queues a scored pair for admin review
type Reviewer interface {
	Enqueue(ctx context.Context, gymA, gymB *models.SourceGym, confidence int, signals models.MatchSignals) (*models.PendingMatch, error)
}

// PassError records a single gym that failed during a pass. One bad record
// must not abort the rest of the batch.
type PassError struct {
	SourceGymID string `json:"source_gym_id"`
	Message     string `json:"message"`
}

// PassSummary reports what a matching pass did
type PassSummary struct {
	Processed  int         `json:"processed"`
	AutoLinked int         `json:"auto_linked"`
	Queued     int         `json:"queued"`
	NoMatch    int         `json:"no_match"`
	Errors     []PassError `json:"errors,omitempty"`
	Duration   string      `json:"duration"`
}

// Config tunes a matching pass
type Config struct {
	// StableOrg supplies the candidate pool
	StableOrg models.Org
	// IncomingOrg supplies the gyms being resolved
	IncomingOrg models.Org
	// PageSize bounds each store read
	PageSize int
}

// DefaultConfig matches naga gyms against the ibjjf pool
func DefaultConfig() Config {
	return Config{
		StableOrg:   models.OrgIBJJF,
		IncomingOrg: models.OrgNAGA,
		PageSize:    200,
	}
}

// Engine runs matching passes: it scores each unlinked incoming gym against
// the stable candidate pool and routes the best candidate by confidence.
type Engine struct {
	gyms     GymLister
	linker   Linker
	reviewer Reviewer
	scorer   *Scorer
	config   Config
	logger   ectologger.Logger
}

// NewEngine creates a matching engine
func NewEngine(gyms GymLister, linker Linker, reviewer Reviewer, config Config, logger ectologger.Logger) *Engine {
	if config.PageSize < 1 {
		config.PageSize = 200
	}
	return &Engine{
		gyms:     gyms,
		linker:   linker,
		reviewer: reviewer,
		scorer:   NewScorer(),
		config:   config,
		logger:   logger,
	}
}

// RunPass resolves every unlinked incoming gym once. Gyms that fail are
// recorded in the summary and skipped; the pass only aborts when the context
// is cancelled or the stores become unreadable.
func (e *Engine) RunPass(ctx context.Context) (*PassSummary, error) {
	ctx, span := tracing.StartSpan(ctx, "matching.Engine.RunPass")
	defer span.End()

	start := time.Now()
	summary := &PassSummary{}

	pool, err := LoadCandidates(ctx, e.gyms, e.config.StableOrg, e.config.PageSize)
	if err != nil {
		return nil, err
	}
	e.logger.WithContext(ctx).WithFields(map[string]any{"candidates": len(pool)}).Info("Loaded candidate pool")

	after := ""
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		page, err := e.gyms.ListUnlinkedByOrg(ctx, e.config.IncomingOrg, after, e.config.PageSize)
		if err != nil {
			return nil, err
		}
		if len(page) == 0 {
			break
		}

		for i := range page {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			e.processGym(ctx, &page[i], pool, summary)
		}

		after = page[len(page)-1].ExternalID
		if len(page) < e.config.PageSize {
			break
		}
	}

	summary.Duration = time.Since(start).String()
	passDuration.Observe(time.Since(start).Seconds())
	e.logger.WithContext(ctx).WithFields(map[string]any{
		"processed":   summary.Processed,
		"auto_linked": summary.AutoLinked,
		"queued":      summary.Queued,
		"no_match":    summary.NoMatch,
		"errors":      len(summary.Errors),
	}).Info("Matching pass complete")

	return summary, nil
}

func (e *Engine) processGym(ctx context.Context, gym *models.SourceGym, pool []models.SourceGym, summary *PassSummary) {
	summary.Processed++
	gymsProcessed.Inc()

	best, confidence, signals := e.bestCandidate(gym, pool)
	outcome := OutcomeNoMatch
	if best != nil {
		outcome = Classify(confidence)
	}
	passOutcomes.WithLabelValues(string(outcome)).Inc()

	switch outcome {
	case OutcomeAutoLink:
		if _, err := e.linker.Link(ctx, gym, best); err != nil {
			e.recordError(ctx, gym, err, summary)
			return
		}
		summary.AutoLinked++
	case OutcomeReview:
		if _, err := e.reviewer.Enqueue(ctx, gym, best, confidence, signals); err != nil {
			e.recordError(ctx, gym, err, summary)
			return
		}
		summary.Queued++
	default:
		summary.NoMatch++
	}
}

// bestCandidate picks the highest scoring candidate. Ties go to the lowest
// external_id so reruns over the same data pick the same candidate.
func (e *Engine) bestCandidate(gym *models.SourceGym, pool []models.SourceGym) (*models.SourceGym, int, models.MatchSignals) {
	var best *models.SourceGym
	bestConfidence := -1
	var bestSignals models.MatchSignals

	for i := range pool {
		candidate := &pool[i]
		confidence, signals := e.scorer.Score(gym, candidate)
		if confidence > bestConfidence ||
			(confidence == bestConfidence && best != nil && candidate.ExternalID < best.ExternalID) {
			best = candidate
			bestConfidence = confidence
			bestSignals = signals
		}
	}

	if best == nil {
		return nil, 0, models.MatchSignals{}
	}
	return best, bestConfidence, bestSignals
}

func (e *Engine) recordError(ctx context.Context, gym *models.SourceGym, err error, summary *PassSummary) {
	passErrors.Inc()
	e.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"source_gym_id": gym.ID()}).Error("Failed to process gym")
	summary.Errors = append(summary.Errors, PassError{
		SourceGymID: gym.ID(),
		Message:     err.Error(),
	})
}
