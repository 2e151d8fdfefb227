// Package enforcer runs the reconciliation loop: resolve the target map
// pool for the current time block, diff it against the server's live
// rotation and apply the difference, then sleep until the next block
// transition.
package enforcer

import (
	"context"
	"errors"
	"time"

	"hllrotate/internal/gateway"
	"hllrotate/internal/gateway/command"
	"hllrotate/internal/logger"
	"hllrotate/internal/maps"
	"hllrotate/internal/schedule"

	"github.com/google/uuid"
)

// passTimeout bounds one full enforcement pass; individual transport
// calls carry their own shorter timeouts.
const passTimeout = 2 * time.Minute

// Params wires the enforcer's dependencies.
type Params struct {
	Commander gateway.RotationCommander
	Resolver  *schedule.Resolver
	Mutator   *maps.Mutator
	// Clock is swappable for tests; defaults to time.Now.
	Clock func() time.Time
}

// Enforcer owns the loop. One pass runs to completion before the next is
// scheduled; the only concurrent reader is the status endpoint.
type Enforcer struct {
	commander gateway.RotationCommander
	resolver  *schedule.Resolver
	mutator   *maps.Mutator
	clock     func() time.Time

	status statusStore
}

func New(p Params) *Enforcer {
	clock := p.Clock
	if clock == nil {
		clock = time.Now
	}
	return &Enforcer{
		commander: p.Commander,
		resolver:  p.Resolver,
		mutator:   p.Mutator,
		clock:     clock,
	}
}

// Run enforces the schedule until ctx is cancelled. Structural schedule
// errors terminate the loop; a failed transport pass is logged and
// retried at the next block transition.
func (e *Enforcer) Run(ctx context.Context) error {
	for {
		if err := e.EnforceOnce(ctx); err != nil {
			var schedErr *schedule.Error
			if errors.As(err, &schedErr) {
				return err
			}
			logger.Errorf("enforcer: pass failed, retrying at next transition: %v", err)
		}

		now := e.clock()
		next := e.resolver.NextTransition(now)
		wait := next.Sub(now)
		if wait < time.Second {
			wait = time.Second
		}
		e.status.setNextTransition(next)
		logger.Infof("enforcer: next block transition at %s, sleeping %s", next.Format(time.RFC3339), wait.Round(time.Second))

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// EnforceOnce performs a single enforcement pass.
func (e *Enforcer) EnforceOnce(ctx context.Context) error {
	passCtx, cancel := context.WithTimeout(ctx, passTimeout)
	defer cancel()

	now := e.clock()
	passID := uuid.NewString()
	weekday := e.resolver.Weekday(now)
	block := e.resolver.CurrentBlock(now)

	target, err := e.resolver.TargetPool(now)
	if err != nil {
		e.status.recordError(passID, weekday, block, err)
		return err
	}
	logger.Infof("enforcer: pass=%s enforcing %s.%s rotation=%s target=%v",
		passID, weekday, block, e.resolver.ActiveRotation(), target)

	snapshot, err := e.commander.CurrentRotation(passCtx)
	if err != nil {
		e.status.recordError(passID, weekday, block, err)
		return err
	}
	if len(snapshot) == 0 {
		logger.Warnf("enforcer: pass=%s server reports no current rotation", passID)
	} else {
		logger.Debugf("enforcer: pass=%s current map still playing: %s", passID, snapshot[0].Canonical())
	}

	removed := queuedNames(snapshot)
	if len(removed) > 0 {
		if err := e.mutator.Remove(passCtx, removed, snapshot); err != nil {
			e.status.recordError(passID, weekday, block, err)
			return err
		}
	} else {
		logger.Debugf("enforcer: pass=%s no queued maps to remove", passID)
	}

	if len(target) > 0 {
		if err := e.mutator.Add(passCtx, target, snapshot); err != nil {
			e.status.recordError(passID, weekday, block, err)
			return err
		}
	} else {
		logger.Infof("enforcer: pass=%s target pool empty, rotation queue left cleared", passID)
	}

	e.status.recordPass(passState{
		PassID:   passID,
		Weekday:  weekday,
		Block:    block,
		Rotation: e.resolver.ActiveRotation(),
		Target:   target,
		Removed:  removed,
		At:       now,
	})
	logger.Infof("enforcer: pass=%s rotation updated for block %s", passID, block)
	return nil
}

// Status returns the last pass summary for the status endpoint.
func (e *Enforcer) Status() Status {
	return e.status.get()
}

// queuedNames extracts the removable entries: everything after index 0,
// which is the map currently being played and is never touched.
func queuedNames(snapshot []command.MapEntry) []string {
	if len(snapshot) <= 1 {
		return nil
	}
	names := make([]string, 0, len(snapshot)-1)
	for _, e := range snapshot[1:] {
		names = append(names, e.Canonical())
	}
	return names
}
