// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Duet Contributors

package server

import (
	"sync"
	"time"
)

// DefaultCooldownWindow is the minimum interval between accepted chat
// requests.
const DefaultCooldownWindow = 2 * time.Second

// cooldownMessage is the wait suggestion returned with a 429.
const cooldownMessage = "Please wait a moment before sending another message"

// Cooldown gates requests by wall clock: after a request is accepted, every
// request arriving within the window is rejected. The timestamp is shared
// across all callers, so one caller's accepted request arms the window for
// everyone. Rejected requests do not re-arm it.
type Cooldown struct {
	mu     sync.Mutex
	window time.Duration
	now    func() time.Time
	last   time.Time
}

// NewCooldown creates a Cooldown with the given window. now defaults to
// time.Now; tests inject a fake clock.
func NewCooldown(window time.Duration, now func() time.Time) *Cooldown {
	if now == nil {
		now = time.Now
	}
	return &Cooldown{window: window, now: now}
}

// Allow reports whether a request may proceed, re-arming the window when it
// does. A nil Cooldown always allows.
func (c *Cooldown) Allow() bool {
	if c == nil {
		return true
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if !c.last.IsZero() && now.Sub(c.last) < c.window {
		return false
	}
	c.last = now
	return true
}
