package metrics

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCountersAreExposed(t *testing.T) {
	m := New()
	m.ApplicationsSubmitted.Inc()
	m.ApplicationTransitions.WithLabelValues("approve", "ok").Inc()
	m.ApplicationTransitions.WithLabelValues("approve", "ok").Inc()

	if got := testutil.ToFloat64(m.ApplicationTransitions.WithLabelValues("approve", "ok")); got != 2 {
		t.Errorf("approve/ok = %v, want 2", got)
	}

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), "sponsorconnect_applications_submitted_total 1") {
		t.Errorf("metrics output missing submitted counter:\n%s", body)
	}
}

func TestNewIsIndependent(t *testing.T) {
	a, b := New(), New()
	a.CampaignsExpired.Inc()
	if got := testutil.ToFloat64(b.CampaignsExpired); got != 0 {
		t.Errorf("second registry saw %v", got)
	}
}

func TestServe(t *testing.T) {
	m := New()
	m.CampaignsExpired.Add(3)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.Serve(ctx, ln) }()

	tests := []struct {
		path   string
		status int
		want   string
	}{
		{"/metrics", http.StatusOK, "sponsorconnect_campaigns_expired_total 3"},
		{"/other", http.StatusNotFound, ""},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, err := http.Get("http://" + ln.Addr().String() + tt.path)
			if err != nil {
				t.Fatalf("GET: %v", err)
			}
			defer resp.Body.Close()
			if resp.StatusCode != tt.status {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tt.status)
			}
			body, _ := io.ReadAll(resp.Body)
			if !strings.Contains(string(body), tt.want) {
				t.Errorf("body missing %q:\n%s", tt.want, body)
			}
		})
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Serve returned %v after cancel", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}
