package session

import (
	"strings"
	"sync"
	"time"
)

// Reserved usernames; matching is case-insensitive after normalization.
var reservedUsernames = map[string]bool{
	"admin":    true,
	"learner":  true,
	"alex":     true,
	"sophia":   true,
	"bookself": true,
	"cognito":  true,
}

// CheckStatus is the username validation state.
type CheckStatus string

const (
	StatusIdle      CheckStatus = "idle"
	StatusChecking  CheckStatus = "checking"
	StatusAvailable CheckStatus = "available"
	StatusTaken     CheckStatus = "taken"
)

// Normalize lowercases a candidate username and strips everything
// outside [a-z0-9_].
func Normalize(raw string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(raw) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// CheckUsername resolves a candidate immediately: taken when the
// normalized form is reserved, available otherwise. An empty normalized
// candidate is idle.
func CheckUsername(raw string) CheckStatus {
	name := Normalize(raw)
	if name == "" {
		return StatusIdle
	}
	if reservedUsernames[name] {
		return StatusTaken
	}
	return StatusAvailable
}

// Checker runs the debounced username sub-protocol: each keystroke
// moves it to checking, and the candidate resolves only after the
// debounce window passes with no further input. Re-keying restarts the
// window.
type Checker struct {
	debounce time.Duration

	mu        sync.Mutex
	timer     *time.Timer
	candidate string
	status    CheckStatus
	notify    func(name string, status CheckStatus)
}

// NewChecker creates a Checker with the given debounce window.
// notify, when non-nil, is invoked from the timer goroutine each time a
// candidate resolves.
func NewChecker(debounce time.Duration, notify func(name string, status CheckStatus)) *Checker {
	return &Checker{
		debounce: debounce,
		status:   StatusIdle,
		notify:   notify,
	}
}

// Input feeds a keystroke's worth of input. Empty input resets to idle.
func (c *Checker) Input(raw string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}

	name := Normalize(raw)
	c.candidate = name
	if name == "" {
		c.status = StatusIdle
		return
	}

	c.status = StatusChecking
	c.timer = time.AfterFunc(c.debounce, func() { c.resolve(name) })
}

func (c *Checker) resolve(name string) {
	c.mu.Lock()
	if c.candidate != name {
		// Superseded by later input.
		c.mu.Unlock()
		return
	}
	status := CheckUsername(name)
	c.status = status
	notify := c.notify
	c.mu.Unlock()

	if notify != nil {
		notify(name, status)
	}
}

// Status returns the current validation state.
func (c *Checker) Status() CheckStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// Candidate returns the current normalized candidate.
func (c *Checker) Candidate() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.candidate
}

// Stop cancels any pending resolution.
func (c *Checker) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}
