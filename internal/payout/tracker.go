package payout

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/m3rciful/relaybot/core/logger"
)

// Outcome classifies what SubmitInput did with a message.
type Outcome int

const (
	// OutcomeNoRequest means the user has no request; the message is not flow input.
	OutcomeNoRequest Outcome = iota
	// OutcomeRejected means the input failed validation and the stage did not change.
	OutcomeRejected
	// OutcomeAdvanced means the input was stored and the request moved to the next stage.
	OutcomeAdvanced
	// OutcomeCompleted means the last stage was filled and the request was removed.
	OutcomeCompleted
)

func (o Outcome) String() string {
	switch o {
	case OutcomeNoRequest:
		return "no_request"
	case OutcomeRejected:
		return "rejected"
	case OutcomeAdvanced:
		return "advanced"
	case OutcomeCompleted:
		return "completed"
	}
	return "unknown"
}

// Result describes the effect of one SubmitInput call.
type Result struct {
	Outcome Outcome
	// Stage is the stage now pending; for OutcomeCompleted it is the stage that was filled.
	Stage Stage
	// Request is a snapshot after the call; fully populated on completion.
	Request Request
	// Invalid is set for OutcomeRejected.
	Invalid *ValidationError
}

// Tracker owns the per-user request state machine: link -> proof -> requisites -> done.
// Calls for the same user are serialized; the store is never touched concurrently for one user.
type Tracker struct {
	store  StateStore
	policy Policy
	locks  *userLocks

	// dispatching maps a user to the completed request whose dispatch is still in flight.
	// Cancel and Start clear it.
	dispatchMu  sync.Mutex
	dispatching map[int64]string

	now   func() time.Time
	newID func() string
}

// NewTracker builds a tracker on top of the given store.
func NewTracker(store StateStore, policy Policy) *Tracker {
	return &Tracker{
		store:  store,
		policy: policy,
		locks:  newUserLocks(),

		dispatching: make(map[int64]string),
		now:         time.Now,
		newID:       uuid.NewString,
	}
}

// Policy returns the validation policy in use.
func (t *Tracker) Policy() Policy {
	return t.policy
}

// StartRequest discards whatever the user had in progress and opens a fresh request at StageLink.
func (t *Tracker) StartRequest(ctx context.Context, userID int64) (Request, error) {
	unlock := t.locks.lock(userID)
	defer unlock()

	req := Request{
		ID:        t.newID(),
		UserID:    userID,
		Stage:     StageLink,
		StartedAt: t.now().UTC(),
	}
	if err := t.store.Put(ctx, req); err != nil {
		return Request{}, fmt.Errorf("start request: %w", err)
	}
	t.takeDispatching(userID)
	logger.Debug(ctx, "payout", "payout.start",
		slog.Int64("user_id", userID),
		slog.String("request_id", req.ID),
	)
	return req, nil
}

// CancelRequest drops the user's request and reports whether one existed.
func (t *Tracker) CancelRequest(ctx context.Context, userID int64) (bool, error) {
	unlock := t.locks.lock(userID)
	defer unlock()

	inFlight := t.takeDispatching(userID) != ""
	_, ok, err := t.store.Get(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("cancel request: %w", err)
	}
	if !ok {
		if inFlight {
			logger.Debug(ctx, "payout", "payout.cancel.in_flight", slog.Int64("user_id", userID))
		}
		return false, nil
	}
	if err := t.store.Delete(ctx, userID); err != nil {
		return false, fmt.Errorf("cancel request: %w", err)
	}
	logger.Debug(ctx, "payout", "payout.cancel", slog.Int64("user_id", userID))
	return true, nil
}

// Active returns the user's request without changing it.
func (t *Tracker) Active(ctx context.Context, userID int64) (Request, bool, error) {
	unlock := t.locks.lock(userID)
	defer unlock()
	return t.store.Get(ctx, userID)
}

// SubmitInput feeds a user message into the pending stage.
// The returned error is reserved for store failures; validation problems are reported
// through Result.Invalid.
func (t *Tracker) SubmitInput(ctx context.Context, userID int64, in Input) (Result, error) {
	unlock := t.locks.lock(userID)
	defer unlock()

	req, ok, err := t.store.Get(ctx, userID)
	if err != nil {
		return Result{}, fmt.Errorf("submit input: %w", err)
	}
	if !ok {
		return Result{Outcome: OutcomeNoRequest}, nil
	}

	switch req.Stage {
	case StageLink:
		link, found := ExtractURL(in, t.policy)
		if !found {
			return t.reject(ctx, req, &ValidationError{Stage: StageLink, Reason: ReasonNoURL}), nil
		}
		req.Link = link
		return t.advance(ctx, req, StageProof)

	case StageProof:
		media, invalid := ExtractMedia(in)
		if invalid != nil {
			return t.reject(ctx, req, invalid), nil
		}
		req.Media = &media
		return t.advance(ctx, req, StageRequisites)

	case StageRequisites:
		requisites, invalid := ExtractRequisites(in, t.policy)
		if invalid != nil {
			return t.reject(ctx, req, invalid), nil
		}
		req.Requisites = requisites
		if err := t.store.Delete(ctx, userID); err != nil {
			return Result{}, fmt.Errorf("complete request: %w", err)
		}
		t.dispatchMu.Lock()
		t.dispatching[userID] = req.ID
		t.dispatchMu.Unlock()
		logger.Info(ctx, "payout", "payout.complete",
			slog.Int64("user_id", userID),
			slog.String("request_id", req.ID),
			slog.String("media", string(mediaKind(req.Media))),
		)
		return Result{Outcome: OutcomeCompleted, Stage: StageRequisites, Request: req}, nil
	}

	// An unknown stage can only come from a foreign or stale store entry.
	if err := t.store.Delete(ctx, userID); err != nil {
		return Result{}, fmt.Errorf("drop request with stage %q: %w", req.Stage, err)
	}
	return Result{}, fmt.Errorf("submit input: unknown stage %q", req.Stage)
}

// Settle marks the dispatch of a completed request as delivered; Restore no longer applies to it.
func (t *Tracker) Settle(req Request) {
	t.settle(req)
}

// settle clears the in-flight marker when it still belongs to req.
func (t *Tracker) settle(req Request) bool {
	t.dispatchMu.Lock()
	defer t.dispatchMu.Unlock()
	if id, ok := t.dispatching[req.UserID]; !ok || id != req.ID {
		return false
	}
	delete(t.dispatching, req.UserID)
	return true
}

// Restore puts a completed request back at StageRequisites after its dispatch failed.
// Nothing happens when the request is no longer in flight: the user cancelled,
// started another request, or the dispatch was settled.
func (t *Tracker) Restore(ctx context.Context, req Request) (bool, error) {
	unlock := t.locks.lock(req.UserID)
	defer unlock()

	if !t.settle(req) {
		return false, nil
	}
	_, exists, err := t.store.Get(ctx, req.UserID)
	if err != nil {
		return false, fmt.Errorf("restore request: %w", err)
	}
	if exists {
		return false, nil
	}
	req.Stage = StageRequisites
	req.Requisites = ""
	if err := t.store.Put(ctx, req); err != nil {
		return false, fmt.Errorf("restore request: %w", err)
	}
	return true, nil
}

// takeDispatching clears and returns the user's in-flight request id.
func (t *Tracker) takeDispatching(userID int64) string {
	t.dispatchMu.Lock()
	defer t.dispatchMu.Unlock()
	id := t.dispatching[userID]
	delete(t.dispatching, userID)
	return id
}

func (t *Tracker) advance(ctx context.Context, req Request, next Stage) (Result, error) {
	req.Stage = next
	if err := t.store.Put(ctx, req); err != nil {
		return Result{}, fmt.Errorf("advance to %s: %w", next, err)
	}
	logger.Debug(ctx, "payout", "payout.advance",
		slog.Int64("user_id", req.UserID),
		slog.String("request_id", req.ID),
		slog.String("stage", string(next)),
	)
	return Result{Outcome: OutcomeAdvanced, Stage: next, Request: req}, nil
}

func (t *Tracker) reject(ctx context.Context, req Request, invalid *ValidationError) Result {
	logger.Debug(ctx, "payout", "payout.reject",
		slog.Int64("user_id", req.UserID),
		slog.String("stage", string(req.Stage)),
		slog.String("reason", string(invalid.Reason)),
	)
	return Result{Outcome: OutcomeRejected, Stage: req.Stage, Request: req, Invalid: invalid}
}

func mediaKind(m *Media) MediaKind {
	if m == nil {
		return ""
	}
	return m.Kind
}
