package auth

import (
	"strings"
	"sync"
	"time"
)

// DefaultGuardDebounce suppresses redirect storms while session and wallet
// state settle (e.g. during a wallet connect handshake).
const DefaultGuardDebounce = 300 * time.Millisecond

// maxGuardStates bounds the per-client state map; beyond it, entries idle
// past guardStateIdleTTL are dropped on the next insert.
const (
	maxGuardStates    = 4096
	guardStateIdleTTL = time.Minute
)

// WalletState is the wallet-side identity source, independent of the session.
type WalletState struct {
	Address   string
	Connected bool
}

// Decision is the guard's verdict for one evaluation. Redirects request a
// full navigation so the protected layout re-evaluates on arrival.
type Decision struct {
	Redirect       bool
	Target         string
	FullNavigation bool
}

// Guard reconciles two independent identity sources, the backend session
// and the connected wallet, and decides whether a path change is required.
// isAuthenticated is tri-state: nil means the session check is still in
// flight and the guard must hold. Debounce and dedup state is kept per
// client key: one browsing context's redirect must never suppress another's.
type Guard struct {
	protectedPrefixes []string
	authPrefixes      []string
	authEntry         string // where unauthenticated users go
	landing           string // where authenticated users on auth routes go
	debounce          time.Duration
	now               func() time.Time

	mu     sync.Mutex
	states map[string]*guardState
}

type guardState struct {
	lastEvalAt   time.Time
	lastRedirect string // key of the last issued redirect, dedup guard
}

func NewGuard(protectedPrefixes, authPrefixes []string, authEntry, landing string) *Guard {
	return &Guard{
		protectedPrefixes: protectedPrefixes,
		authPrefixes:      authPrefixes,
		authEntry:         authEntry,
		landing:           landing,
		debounce:          DefaultGuardDebounce,
		now:               time.Now,
		states:            make(map[string]*guardState),
	}
}

// HasAuth reports whether either identity source suffices on its own.
func HasAuth(isAuthenticated *bool, wallet WalletState) bool {
	if isAuthenticated != nil && *isAuthenticated {
		return true
	}
	return wallet.Address != "" && wallet.Connected
}

// Evaluate decides whether the client must be redirected. A session check
// error must be mapped to a non-nil false by the caller before evaluating;
// the guard itself never treats an error as authenticated.
func (g *Guard) Evaluate(client, path string, isAuthenticated *bool, wallet WalletState) Decision {
	// Session state unresolved: redirecting now would race the check and
	// flash-redirect users who are about to be authenticated.
	if isAuthenticated == nil {
		return Decision{}
	}

	hasAuth := HasAuth(isAuthenticated, wallet)

	var target string
	switch {
	case g.isProtected(path) && !hasAuth:
		target = g.authEntry
	case g.isAuthRoute(path) && hasAuth:
		target = g.landing
	default:
		g.mu.Lock()
		g.state(client).lastEvalAt = g.now()
		g.mu.Unlock()
		return Decision{}
	}

	key := redirectKey(path, hasAuth)

	g.mu.Lock()
	defer g.mu.Unlock()

	st := g.state(client)
	now := g.now()
	if key == st.lastRedirect {
		return Decision{}
	}
	if !st.lastEvalAt.IsZero() && now.Sub(st.lastEvalAt) < g.debounce {
		st.lastEvalAt = now
		return Decision{}
	}

	st.lastEvalAt = now
	st.lastRedirect = key
	return Decision{Redirect: true, Target: target, FullNavigation: true}
}

// Reset clears one client's debounce and dedup state, e.g. when its guarded
// view unmounts.
func (g *Guard) Reset(client string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.states, client)
}

// state returns the client's entry, creating it and evicting stale entries
// as needed. Caller holds g.mu.
func (g *Guard) state(client string) *guardState {
	st, ok := g.states[client]
	if ok {
		return st
	}
	if len(g.states) >= maxGuardStates {
		cutoff := g.now().Add(-guardStateIdleTTL)
		for k, s := range g.states {
			if s.lastEvalAt.Before(cutoff) {
				delete(g.states, k)
			}
		}
	}
	st = &guardState{}
	g.states[client] = st
	return st
}

func (g *Guard) isProtected(path string) bool {
	return hasAnyPrefix(path, g.protectedPrefixes)
}

func (g *Guard) isAuthRoute(path string) bool {
	return hasAnyPrefix(path, g.authPrefixes)
}

func hasAnyPrefix(path string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

func redirectKey(path string, hasAuth bool) string {
	if hasAuth {
		return path + "|authed"
	}
	return path + "|anon"
}
