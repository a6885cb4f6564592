package evaluation

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/solace/internal/apperr"
	"github.com/hyperjump/solace/internal/generation"
	"github.com/hyperjump/solace/internal/metrics"
	"github.com/hyperjump/solace/internal/models"
	"github.com/hyperjump/solace/internal/storage"
)

const (
	DefaultRecentCount  = 20
	DefaultHistoryLimit = 10
)

// Config tunes the controller.
type Config struct {
	Policy      Policy
	RecentCount int
	Language    string
	Question    string
}

// Result is a computed evaluation together with the cache decision that governed persistence.
type Result struct {
	Evaluation *models.Evaluation `json:"evaluation"`
	State      string             `json:"cache_state"`
	// RecordID is the record the evaluation was written to, or the live one when Fresh.
	RecordID int64 `json:"evaluation_id"`
}

// Controller computes evaluations on demand and throttles how often they are persisted.
type Controller struct {
	store     storage.FragmentStore
	generator generation.Generator
	repo      Repository
	markers   MarkerStore
	cfg       Config
	now       func() time.Time
	logger    *zap.Logger
}

// Option configures a Controller.
type Option func(*Controller)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// WithLogger sets the controller's logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewController creates a controller.
func NewController(store storage.FragmentStore, gen generation.Generator, repo Repository, markers MarkerStore, cfg Config, opts ...Option) *Controller {
	if cfg.Policy.ThrottleWindow <= 0 {
		cfg.Policy.ThrottleWindow = DefaultPolicy.ThrottleWindow
	}
	if cfg.Policy.Horizon <= 0 {
		cfg.Policy.Horizon = DefaultPolicy.Horizon
	}
	if cfg.RecentCount <= 0 {
		cfg.RecentCount = DefaultRecentCount
	}
	c := &Controller{
		store:     store,
		generator: gen,
		repo:      repo,
		markers:   markers,
		cfg:       cfg,
		now:       time.Now,
		logger:    zap.NewNop(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Evaluate is GetOrRefresh over the configured number of recent messages.
func (c *Controller) Evaluate(ctx context.Context, userID int64) (*Result, error) {
	return c.GetOrRefresh(ctx, userID, c.cfg.RecentCount)
}

// GetOrRefresh returns a freshly computed evaluation of the user's last recentCount
// messages (the configured count when recentCount <= 0). The result is always recomputed; whether it is persisted depends on the user's marker:
//
//	no marker or older than the horizon: insert a new record
//	younger than the throttle window:    persist nothing
//	otherwise:                           update the marked record in place
//
// A generator or parse failure persists nothing and leaves the marker untouched. A marker
// write failure after the record was persisted is returned as an Internal error.
func (c *Controller) GetOrRefresh(ctx context.Context, userID int64, recentCount int) (*Result, error) {
	const op = "evaluation.get_or_refresh"
	if recentCount <= 0 {
		recentCount = c.cfg.RecentCount
	}

	marker, err := c.markers.Get(ctx, userID)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, op, err)
	}

	evaluation, err := c.compute(ctx, userID, recentCount)
	if err != nil {
		metrics.EvaluationFailures.Inc()
		return nil, err
	}

	now := c.now()
	decision := Decide(marker, now, c.cfg.Policy)
	metrics.EvaluationDecisions.WithLabelValues(decision.State.String()).Inc()
	log := c.logger.With(zap.Int64("user_id", userID), zap.Stringer("state", decision.State))

	res := &Result{Evaluation: evaluation, State: decision.State.String()}
	switch decision.State {
	case Fresh:
		res.RecordID = decision.Marker.EvaluationID
		log.Debug("evaluation fresh, not persisted")
		return res, nil

	case Stale:
		rec, err := c.repo.FindByID(ctx, decision.Marker.EvaluationID)
		switch {
		case err == nil && rec.UserID == userID:
			rec.Apply(evaluation)
			if err := c.repo.Update(ctx, rec); err != nil {
				return nil, err
			}
			res.RecordID = rec.ID
		case err == nil || apperr.IsNotFound(err):
			log.Warn("marked evaluation record missing, inserting a new one",
				zap.Int64("evaluation_id", decision.Marker.EvaluationID))
			id, err := c.insert(ctx, userID, evaluation)
			if err != nil {
				return nil, err
			}
			res.RecordID = id
		default:
			return nil, err
		}

	case NoCache:
		id, err := c.insert(ctx, userID, evaluation)
		if err != nil {
			return nil, err
		}
		res.RecordID = id
	}

	if err := c.markers.Set(ctx, userID, Marker{EvaluationID: res.RecordID, LastUpdated: now}); err != nil {
		log.Error("failed to write evaluation marker",
			zap.Int64("evaluation_id", res.RecordID), zap.Error(err))
		return nil, apperr.Wrap(apperr.KindInternal, op, err)
	}
	log.Info("evaluation persisted", zap.Int64("evaluation_id", res.RecordID))
	return res, nil
}

// History returns the user's persisted evaluations, newest first.
func (c *Controller) History(ctx context.Context, userID int64, limit int) ([]*models.EvaluationRecord, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return c.repo.ListByUser(ctx, userID, limit)
}

// Count returns how many evaluation records the user has.
func (c *Controller) Count(ctx context.Context, userID int64) (int64, error) {
	return c.repo.CountByUser(ctx, userID)
}

func (c *Controller) compute(ctx context.Context, userID int64, recentCount int) (*models.Evaluation, error) {
	recent, err := c.store.Recent(ctx, userID, recentCount)
	if err != nil {
		return nil, err
	}
	prompt := BuildPrompt(recent, c.cfg.Language, c.cfg.Question)
	raw, err := c.generator.Generate(ctx, prompt)
	if err != nil {
		if !apperr.HasKind(err) {
			err = apperr.Wrap(apperr.KindGenerationUnavailable, "evaluation.generate", err)
		}
		return nil, err
	}
	e, err := ParseEvaluation(raw)
	if err != nil {
		c.logger.Warn("unparseable evaluation output",
			zap.Int64("user_id", userID),
			zap.String("model", c.generator.Model()),
			zap.Error(err))
		return nil, err
	}
	return e, nil
}

func (c *Controller) insert(ctx context.Context, userID int64, e *models.Evaluation) (int64, error) {
	rec := &models.EvaluationRecord{UserID: userID}
	rec.Apply(e)
	if err := c.repo.Create(ctx, rec); err != nil {
		return 0, err
	}
	return rec.ID, nil
}
