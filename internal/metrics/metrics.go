// Package metrics exposes marketplace lifecycle counters for Prometheus.
package metrics

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry *prometheus.Registry

	CampaignsCreated       *prometheus.CounterVec
	CampaignTransitions    *prometheus.CounterVec
	ApplicationsSubmitted  prometheus.Counter
	ApplicationTransitions *prometheus.CounterVec
	DraftSaves             *prometheus.CounterVec
	ApplicantDrift         prometheus.Counter
	CampaignsExpired       prometheus.Counter
}

// New builds a registry of its own so tests can create as many as they like.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		CampaignsCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sponsorconnect_campaigns_created_total",
			Help: "Campaigns created, by initial status.",
		}, []string{"status"}),
		CampaignTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sponsorconnect_campaign_transitions_total",
			Help: "Campaign status changes, by target status.",
		}, []string{"to"}),
		ApplicationsSubmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sponsorconnect_applications_submitted_total",
			Help: "Applications accepted.",
		}),
		ApplicationTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sponsorconnect_application_transitions_total",
			Help: "Application review actions, by action and outcome.",
		}, []string{"action", "outcome"}),
		DraftSaves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sponsorconnect_draft_saves_total",
			Help: "Campaign draft autosave writes, by trigger.",
		}, []string{"trigger"}),
		ApplicantDrift: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sponsorconnect_applicant_counter_repairs_total",
			Help: "Applicant counters corrected by reconciliation.",
		}),
		CampaignsExpired: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sponsorconnect_campaigns_expired_total",
			Help: "Active campaigns completed after their end date.",
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.CampaignsCreated,
		m.CampaignTransitions,
		m.ApplicationsSubmitted,
		m.ApplicationTransitions,
		m.DraftSaves,
		m.ApplicantDrift,
		m.CampaignsExpired,
	)
	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Serve exposes /metrics on ln until ctx is cancelled. It is used by processes
// without an HTTP app of their own, such as cmd/worker.
func (m *Metrics) Serve(ctx context.Context, ln net.Listener) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
