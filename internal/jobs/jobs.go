// Package jobs holds the periodic maintenance run by cmd/worker.
package jobs

import (
	"context"
	"time"

	"github.com/sponsorconnect/backend/internal/config"
	"github.com/sponsorconnect/backend/internal/repositories"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// CampaignMaintainer is implemented by services.CampaignService.
type CampaignMaintainer interface {
	ExpireEnded(ctx context.Context) (int, error)
	ReconcileApplicants(ctx context.Context) ([]repositories.ApplicantDrift, error)
}

type Runner struct {
	campaigns         CampaignMaintainer
	reconcileInterval time.Duration
	expireInterval    time.Duration
	log               *zap.Logger
}

// NewRunner falls back to the default intervals for non-positive values, which
// time.NewTicker would reject.
func NewRunner(campaigns CampaignMaintainer, reconcileInterval, expireInterval time.Duration, log *zap.Logger) *Runner {
	if reconcileInterval <= 0 {
		reconcileInterval = config.DefaultReconcileInterval
	}
	if expireInterval <= 0 {
		expireInterval = config.DefaultExpireInterval
	}
	return &Runner{
		campaigns:         campaigns,
		reconcileInterval: reconcileInterval,
		expireInterval:    expireInterval,
		log:               log,
	}
}

// RunOnce runs every job concurrently and returns the first failure.
func (r *Runner) RunOnce(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return r.expire(ctx) })
	g.Go(func() error { return r.reconcile(ctx) })
	return g.Wait()
}

// Run starts with one full pass, then repeats each job on its own ticker until
// ctx is cancelled. Job failures are logged and retried on the next tick.
func (r *Runner) Run(ctx context.Context) {
	if err := r.RunOnce(ctx); err != nil {
		r.log.Error("initial maintenance pass failed", zap.Error(err))
	}

	reconcileTicker := time.NewTicker(r.reconcileInterval)
	expireTicker := time.NewTicker(r.expireInterval)
	defer reconcileTicker.Stop()
	defer expireTicker.Stop()

	for {
		select {
		case <-reconcileTicker.C:
			if err := r.reconcile(ctx); err != nil {
				r.log.Error("applicant reconciliation failed", zap.Error(err))
			}
		case <-expireTicker.C:
			if err := r.expire(ctx); err != nil {
				r.log.Error("campaign expiry failed", zap.Error(err))
			}
		case <-ctx.Done():
			return
		}
	}
}

func (r *Runner) expire(ctx context.Context) error {
	n, err := r.campaigns.ExpireEnded(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		r.log.Info("completed ended campaigns", zap.Int("count", n))
	}
	return nil
}

func (r *Runner) reconcile(ctx context.Context) error {
	drift, err := r.campaigns.ReconcileApplicants(ctx)
	if err != nil {
		return err
	}
	if len(drift) > 0 {
		r.log.Warn("applicant counters repaired", zap.Int("campaigns", len(drift)))
	}
	return nil
}
