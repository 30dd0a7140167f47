// Package keypool manages the rotating set of credentials for the primary
// generation provider.
//
// The pool holds zero or more interchangeable keys plus an optional overflow
// key held in reserve. Each key carries a cooldown timestamp: once a key hits
// a rate limit it is assumed unusable until the cooldown expires. Rotation is
// the only mutation and always happens under the pool lock, so concurrent
// verification tasks can rotate without corrupting the cooldown map or
// activating a key that is still cooling down.
package keypool

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Credential identifies the currently selected key.
type Credential struct {
	Key      string
	Index    int
	Overflow bool
}

// Label names the credential for log lines without leaking the secret.
func (c Credential) Label() string {
	if c.Overflow {
		return "overflow"
	}
	return fmt.Sprintf("#%d", c.Index+1)
}

// Pool owns the credential set and the active selection.
type Pool struct {
	mu          sync.Mutex
	keys        []string
	cooldowns   []time.Time
	active      int
	overflowKey string
	useOverflow bool
	cooldown    time.Duration
	now         func() time.Time
}

// Option configures the pool.
type Option func(*Pool)

// WithClock injects a clock for deterministic cooldown tests.
func WithClock(now func() time.Time) Option {
	return func(p *Pool) { p.now = now }
}

// New creates a pool from the configured keys. overflowKey may be empty.
// cooldown is how long a rate-limited key stays unselectable.
func New(keys []string, overflowKey string, cooldown time.Duration, opts ...Option) *Pool {
	p := &Pool{
		keys:        keys,
		cooldowns:   make([]time.Time, len(keys)),
		overflowKey: overflowKey,
		cooldown:    cooldown,
		now:         time.Now,
	}
	// No primary keys at all: start on the overflow key if there is one.
	if len(keys) == 0 && overflowKey != "" {
		p.useOverflow = true
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Empty reports whether the pool has no credentials of any kind. This is the
// one configuration error the service surfaces instead of degrading.
func (p *Pool) Empty() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.keys) == 0 && p.overflowKey == ""
}

// Active returns the currently selected credential. ok is false when the
// pool is entirely unconfigured.
func (p *Pool) Active() (Credential, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.activeLocked()
}

func (p *Pool) activeLocked() (Credential, bool) {
	if p.useOverflow {
		if p.overflowKey == "" {
			return Credential{}, false
		}
		return Credential{Key: p.overflowKey, Overflow: true}, true
	}
	if len(p.keys) == 0 {
		return Credential{}, false
	}
	return Credential{Key: p.keys[p.active], Index: p.active}, true
}

// Rotate tries to select a different usable credential and reports whether
// one was found. The new selection is committed before Rotate returns, so a
// caller may retry immediately.
//
// Order: if an overflow key exists, is not active, and every primary key is
// on cooldown (or none exist), switch to it. Otherwise put the current
// primary key on cooldown and scan forward (wrapping once) for the nearest
// key whose cooldown has expired. Failing that, fall back to the overflow
// key if present. Returning false is a legitimate terminal state, not an
// error: every credential everywhere is cooling down.
func (p *Pool) Rotate() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.now()

	if p.overflowKey != "" && !p.useOverflow {
		if len(p.keys) == 0 || p.allOnCooldownLocked(now) {
			zap.L().Info("keypool: all primary keys exhausted, switching to overflow key")
			p.useOverflow = true
			return true
		}
	}

	if len(p.keys) == 0 {
		if p.overflowKey != "" {
			p.useOverflow = true
			return true
		}
		return false
	}

	// The active key just hit a rate limit; assume it is unusable for the
	// full cooldown window.
	if !p.useOverflow {
		p.cooldowns[p.active] = now.Add(p.cooldown)
	}

	for i := 1; i <= len(p.keys); i++ {
		idx := (p.active + i) % len(p.keys)
		if now.After(p.cooldowns[idx]) {
			p.active = idx
			p.useOverflow = false
			zap.L().Info("keypool: rotated credential", zap.Int("index", idx+1))
			return true
		}
	}

	if p.overflowKey != "" {
		p.useOverflow = true
		zap.L().Info("keypool: all primary keys on cooldown, switching to overflow key")
		return true
	}

	zap.L().Warn("keypool: all credentials on cooldown, rotation failed")
	return false
}

func (p *Pool) allOnCooldownLocked(now time.Time) bool {
	for _, cd := range p.cooldowns {
		if now.After(cd) {
			return false
		}
	}
	return true
}
