package auth

import (
	"testing"
	"time"
)

func newTestGuard() (*Guard, *time.Time) {
	g := NewGuard([]string{"/dashboard"}, []string{"/auth"}, "/auth", "/dashboard")
	now := time.Unix(1_700_000_000, 0)
	g.now = func() time.Time { return now }
	return g, &now
}

func boolPtr(b bool) *bool { return &b }

func TestGuardRedirectMatrix(t *testing.T) {
	tests := []struct {
		name         string
		path         string
		session      *bool
		wallet       WalletState
		wantRedirect bool
		wantTarget   string
	}{
		{"protected unauthenticated", "/dashboard", boolPtr(false), WalletState{}, true, "/auth"},
		{"protected nested unauthenticated", "/dashboard/trades/42", boolPtr(false), WalletState{}, true, "/auth"},
		{"protected with session", "/dashboard", boolPtr(true), WalletState{}, false, ""},
		{"protected with wallet only", "/dashboard", boolPtr(false), WalletState{Address: "GABC", Connected: true}, false, ""},
		{"wallet address without connection", "/dashboard", boolPtr(false), WalletState{Address: "GABC", Connected: false}, true, "/auth"},
		{"wallet connected without address", "/dashboard", boolPtr(false), WalletState{Connected: true}, true, "/auth"},
		{"auth route while authenticated", "/auth", boolPtr(true), WalletState{}, true, "/dashboard"},
		{"auth route wallet identity", "/auth/signin", boolPtr(false), WalletState{Address: "GABC", Connected: true}, true, "/dashboard"},
		{"auth route unauthenticated", "/auth", boolPtr(false), WalletState{}, false, ""},
		{"public route", "/", boolPtr(false), WalletState{}, false, ""},
		{"public route authenticated", "/merchants/alice", boolPtr(true), WalletState{}, false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, _ := newTestGuard()
			d := g.Evaluate("tab-1", tt.path, tt.session, tt.wallet)
			if d.Redirect != tt.wantRedirect {
				t.Fatalf("Redirect = %v, want %v", d.Redirect, tt.wantRedirect)
			}
			if d.Target != tt.wantTarget {
				t.Errorf("Target = %q, want %q", d.Target, tt.wantTarget)
			}
			if d.Redirect && !d.FullNavigation {
				t.Error("redirects must request full navigation")
			}
		})
	}
}

func TestGuardHoldsWhileSessionChecking(t *testing.T) {
	g, _ := newTestGuard()
	if d := g.Evaluate("tab-1", "/dashboard", nil, WalletState{}); d.Redirect {
		t.Error("must not redirect while session check is in flight")
	}
	// Once the check resolves to false the redirect fires.
	if d := g.Evaluate("tab-1", "/dashboard", boolPtr(false), WalletState{}); !d.Redirect {
		t.Error("expected redirect after session resolved unauthenticated")
	}
}

func TestGuardDebouncesRapidEvaluations(t *testing.T) {
	g, now := newTestGuard()

	d := g.Evaluate("tab-1", "/dashboard", boolPtr(false), WalletState{})
	if !d.Redirect {
		t.Fatal("first evaluation should redirect")
	}

	// Different path, 100ms later: inside the debounce window.
	*now = now.Add(100 * time.Millisecond)
	if d := g.Evaluate("tab-1", "/dashboard/settings", boolPtr(false), WalletState{}); d.Redirect {
		t.Error("evaluation inside debounce window should be suppressed")
	}

	// Past the window the new decision goes through.
	*now = now.Add(DefaultGuardDebounce)
	if d := g.Evaluate("tab-1", "/dashboard/settings", boolPtr(false), WalletState{}); !d.Redirect {
		t.Error("expected redirect after debounce window elapsed")
	}
}

func TestGuardDeduplicatesIdenticalDecision(t *testing.T) {
	g, now := newTestGuard()

	if d := g.Evaluate("tab-1", "/dashboard", boolPtr(false), WalletState{}); !d.Redirect {
		t.Fatal("first evaluation should redirect")
	}

	// Same (path, hasAuth) long after the debounce window: still deduped,
	// otherwise rapid state updates during wallet connect loop forever.
	*now = now.Add(10 * time.Second)
	if d := g.Evaluate("tab-1", "/dashboard", boolPtr(false), WalletState{}); d.Redirect {
		t.Error("identical redirect decision must be deduplicated")
	}

	// Auth state flips: key changes, decision allowed again.
	*now = now.Add(10 * time.Second)
	if d := g.Evaluate("tab-1", "/auth", boolPtr(true), WalletState{}); !d.Redirect {
		t.Error("changed auth state should produce a fresh redirect")
	}
}

func TestGuardResetClearsState(t *testing.T) {
	g, now := newTestGuard()

	if d := g.Evaluate("tab-1", "/dashboard", boolPtr(false), WalletState{}); !d.Redirect {
		t.Fatal("first evaluation should redirect")
	}
	g.Reset("tab-1")
	*now = now.Add(time.Millisecond)
	if d := g.Evaluate("tab-1", "/dashboard", boolPtr(false), WalletState{}); !d.Redirect {
		t.Error("expected redirect after reset")
	}
}

func TestGuardStateIsPerClient(t *testing.T) {
	g, now := newTestGuard()

	if d := g.Evaluate("tab-1", "/dashboard", boolPtr(false), WalletState{}); !d.Redirect {
		t.Fatal("first client should redirect")
	}

	// A second client hitting the same (path, auth) decision immediately
	// after must still be redirected: one client's dedup and debounce must
	// not leak into another's.
	if d := g.Evaluate("tab-2", "/dashboard", boolPtr(false), WalletState{}); !d.Redirect {
		t.Error("second client's identical decision was suppressed by the first")
	}

	// Resetting one client leaves the other's dedup intact.
	g.Reset("tab-1")
	*now = now.Add(time.Millisecond)
	if d := g.Evaluate("tab-1", "/dashboard", boolPtr(false), WalletState{}); !d.Redirect {
		t.Error("expected redirect for reset client")
	}
	*now = now.Add(10 * time.Second)
	if d := g.Evaluate("tab-2", "/dashboard", boolPtr(false), WalletState{}); d.Redirect {
		t.Error("unreset client's duplicate decision should stay deduplicated")
	}
}

func TestHasAuthEitherIdentitySuffices(t *testing.T) {
	if !HasAuth(boolPtr(true), WalletState{}) {
		t.Error("session alone should authorize")
	}
	if !HasAuth(boolPtr(false), WalletState{Address: "GABC", Connected: true}) {
		t.Error("wallet alone should authorize")
	}
	if HasAuth(nil, WalletState{}) {
		t.Error("unresolved session with no wallet should not authorize")
	}
	if !HasAuth(nil, WalletState{Address: "GABC", Connected: true}) {
		t.Error("wallet identity should authorize even while session resolves")
	}
}
