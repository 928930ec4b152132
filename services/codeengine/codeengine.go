// Package codeengine implements the rotating confirmation-code generator
// (C3): a per-course confirmation code with an absolute expiry, minted
// lazily on read and proactively refreshed by a background sweep.
package codeengine

import (
	"context"
	"crypto/rand"
	"errors"
	"math/big"
	"sync"
	"time"

	"github.com/rollcall/server/clock"
	"github.com/rollcall/server/config"
	"github.com/rollcall/server/database"
	"github.com/rollcall/server/logging"
)

// ErrCourseMissing is returned when the requested course does not exist.
var ErrCourseMissing = errors.New("course not found")

// Code is the current confirmation code for a course, with the time
// remaining before it expires.
type Code struct {
	Code             string
	ExpiresAt        time.Time
	SecondsRemaining int
}

// Result is the outcome of Validate.
type Result int

const (
	// Valid means submittedCode matches the course's current, unexpired code.
	Valid Result = iota
	// Expired means no live code exists (absent or past expiry) — the two
	// collapse to the same outcome at this boundary (Open Question 3).
	Expired
	// Mismatch means a live code exists but submittedCode does not match it.
	Mismatch
	// CourseMissing means courseID does not name an existing course.
	CourseMissing
)

// Store is the persistence surface the engine needs from database.Store.
type Store interface {
	ReadCurrentCode(ctx context.Context, courseID string) (*database.CodeState, error)
	SetCurrentCode(ctx context.Context, courseID, code string, expiresAt time.Time) error
	ListCourseIDs(ctx context.Context) ([]string, error)
}

// Engine is the C3 component. A per-course mutex serializes mint attempts so
// two concurrent readers of an expired code never mint two different codes;
// different courses refresh independently.
type Engine struct {
	store  Store
	clk    clock.Clock
	length int
	ttl    time.Duration

	mu    sync.Mutex
	locks map[string]*sync.Mutex

	done chan struct{}
	wg   sync.WaitGroup
}

// New builds a Code Engine. length is the number of characters per code; ttl
// is how long a freshly minted code stays valid.
func New(store Store, clk clock.Clock, length int, ttl time.Duration) *Engine {
	return &Engine{
		store:  store,
		clk:    clk,
		length: length,
		ttl:    ttl,
		locks:  make(map[string]*sync.Mutex),
		done:   make(chan struct{}),
	}
}

// StartSweep launches the background refresh loop on a fixed interval. It
// returns immediately; call StopSweep to shut it down.
func (e *Engine) StartSweep(interval time.Duration) {
	e.wg.Add(1)
	go e.runSweepLoop(interval)
}

// StopSweep signals the sweep loop to exit and waits for it to finish.
func (e *Engine) StopSweep() {
	close(e.done)
	e.wg.Wait()
}

func (e *Engine) runSweepLoop(interval time.Duration) {
	defer e.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := e.Sweep(context.Background()); err != nil {
				// A failed sweep tick proactively refreshes nothing this
				// round; the next tick or a lazy Current call recovers.
				logging.Logger.WithError(err).Warn("confirmation code sweep failed")
			}
		case <-e.done:
			return
		}
	}
}

func (e *Engine) courseLock(courseID string) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()

	l, ok := e.locks[courseID]
	if !ok {
		l = &sync.Mutex{}
		e.locks[courseID] = l
	}
	return l
}

// Current returns courseID's live code, minting a fresh one first if the
// stored code is absent or expired.
func (e *Engine) Current(ctx context.Context, courseID string) (Code, error) {
	lock := e.courseLock(courseID)
	lock.Lock()
	defer lock.Unlock()

	now := e.clk.Now()

	state, err := e.store.ReadCurrentCode(ctx, courseID)
	if err != nil {
		if errors.Is(err, database.ErrCourseNotFound) {
			return Code{}, ErrCourseMissing
		}
		return Code{}, err
	}

	if state == nil || !state.ExpiresAt.After(now) {
		return e.mintLocked(ctx, courseID, now)
	}

	return Code{
		Code:             state.Code,
		ExpiresAt:        state.ExpiresAt,
		SecondsRemaining: int(state.ExpiresAt.Sub(now).Seconds()),
	}, nil
}

// mintLocked generates and persists a fresh code. Callers must already hold
// the per-course lock for courseID.
func (e *Engine) mintLocked(ctx context.Context, courseID string, now time.Time) (Code, error) {
	code, err := randomCode(e.length)
	if err != nil {
		return Code{}, err
	}

	expiresAt := now.Add(e.ttl)
	if err := e.store.SetCurrentCode(ctx, courseID, code, expiresAt); err != nil {
		if errors.Is(err, database.ErrCourseNotFound) {
			return Code{}, ErrCourseMissing
		}
		return Code{}, err
	}

	return Code{Code: code, ExpiresAt: expiresAt, SecondsRemaining: int(e.ttl.Seconds())}, nil
}

// Validate checks submittedCode against courseID's current code without
// minting a new one on expiry — only Current mints.
func (e *Engine) Validate(ctx context.Context, courseID, submittedCode string, now time.Time) (Result, error) {
	state, err := e.store.ReadCurrentCode(ctx, courseID)
	if err != nil {
		if errors.Is(err, database.ErrCourseNotFound) {
			return CourseMissing, nil
		}
		return 0, err
	}

	if state == nil || !state.ExpiresAt.After(now) {
		return Expired, nil
	}

	if state.Code != submittedCode {
		return Mismatch, nil
	}

	return Valid, nil
}

// refreshHorizon is how close to expiry (or past it) a course's code must be
// before the sweep proactively mints a replacement.
const refreshHorizon = 10 * time.Second

// Sweep scans every course and proactively refreshes any code within
// refreshHorizon of expiring, or already expired. It is the non-lazy half of
// the scheduled refresh loop described for C3; runSweepLoop, started by
// StartSweep, calls it on a fixed interval.
func (e *Engine) Sweep(ctx context.Context) error {
	ids, err := e.store.ListCourseIDs(ctx)
	if err != nil {
		return err
	}

	now := e.clk.Now()
	for _, id := range ids {
		if err := e.sweepOne(ctx, id, now); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) sweepOne(ctx context.Context, courseID string, now time.Time) error {
	lock := e.courseLock(courseID)
	if !lock.TryLock() {
		// Another goroutine (a concurrent Current call or overlapping sweep
		// tick) is already refreshing this course; skip it this round.
		return nil
	}
	defer lock.Unlock()

	state, err := e.store.ReadCurrentCode(ctx, courseID)
	if err != nil {
		if errors.Is(err, database.ErrCourseNotFound) {
			return nil
		}
		return err
	}

	if state != nil && state.ExpiresAt.Sub(now) > refreshHorizon {
		return nil
	}

	_, err = e.mintLocked(ctx, courseID, now)
	return err
}

func randomCode(length int) (string, error) {
	alphabet := config.CodeAlphabet
	out := make([]byte, length)
	max := big.NewInt(int64(len(alphabet)))
	for i := range out {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		out[i] = alphabet[n.Int64()]
	}
	return string(out), nil
}
