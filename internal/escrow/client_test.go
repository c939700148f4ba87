package escrow

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
)

func TestClientClassifiesRemoteFailures(t *testing.T) {
	ctx := context.Background()

	t.Run("non-2xx is a refusal", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, `{"error":"milestone already approved"}`, http.StatusConflict)
		}))
		defer srv.Close()

		c := NewClient(srv.URL, "test-key", zap.NewNop())
		err := c.ApproveMilestone(ctx, "eng-1")
		if !errors.Is(err, ErrRemoteRefused) {
			t.Errorf("err = %v, want ErrRemoteRefused", err)
		}
		if errors.Is(err, ErrRemoteUnavailable) {
			t.Error("a refused request must not read as unavailable")
		}
	})

	t.Run("transport failure is unavailability", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {}))
		srv.Close() // connection refused from here on

		c := NewClient(srv.URL, "test-key", zap.NewNop())
		err := c.ReleaseFunds(ctx, "eng-1")
		if !errors.Is(err, ErrRemoteUnavailable) {
			t.Errorf("err = %v, want ErrRemoteUnavailable", err)
		}
	})

	t.Run("success passes auth header", func(t *testing.T) {
		var gotAuth string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotAuth = r.Header.Get("Authorization")
			w.WriteHeader(http.StatusOK)
		}))
		defer srv.Close()

		c := NewClient(srv.URL, "test-key", zap.NewNop())
		if err := c.DisputeEscrow(ctx, "eng-1"); err != nil {
			t.Fatal(err)
		}
		if gotAuth != "Bearer test-key" {
			t.Errorf("Authorization = %q", gotAuth)
		}
	})
}
