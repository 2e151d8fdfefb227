package maps

import (
	"context"

	"hllrotate/internal/gateway/command"
	"hllrotate/internal/logger"
)

// RotationMutator is the mutation subset of the transport surface the
// Mutator drives.
type RotationMutator interface {
	AddToRotation(ctx context.Context, names []string) error
	RemoveFromRotation(ctx context.Context, names []string) error
}

// Mutator applies add/remove operations with canonicalized names, retrying
// once with an alternate spelling when the server rejects an identifier it
// does not recognize. Not-applicable rejections are idempotent no-ops.
type Mutator struct {
	transport RotationMutator
	canon     *Canonicalizer
}

func NewMutator(transport RotationMutator, canon *Canonicalizer) *Mutator {
	return &Mutator{transport: transport, canon: canon}
}

// Add queues the requested maps in order. The retry variant submits
// preferred display names in place of canonical identifiers.
func (m *Mutator) Add(ctx context.Context, requested []string, live []command.MapEntry) error {
	if len(requested) == 0 {
		return nil
	}
	canonical := m.canon.Resolve(ctx, requested, live)
	displays := make([]string, len(canonical))
	for i, id := range canonical {
		displays[i] = m.canon.DisplayName(id)
	}
	return attemptVariants(ctx, "add", [][]string{canonical, displays}, m.transport.AddToRotation)
}

// Remove deletes the requested maps from the queue. The retry variant
// submits the originally-reported names unchanged.
func (m *Mutator) Remove(ctx context.Context, requested []string, live []command.MapEntry) error {
	if len(requested) == 0 {
		return nil
	}
	canonical := m.canon.Resolve(ctx, requested, live)
	return attemptVariants(ctx, "remove", [][]string{canonical, requested}, m.transport.RemoveFromRotation)
}

// attemptVariants runs apply with each payload variant in turn. It
// short-circuits on success, on a not-applicable rejection (idempotent
// no-op) and on any error other than an invalid-name rejection.
func attemptVariants(ctx context.Context, op string, variants [][]string, apply func(context.Context, []string) error) error {
	var lastErr error
	for i, names := range variants {
		if i > 0 && equalNames(names, variants[i-1]) {
			continue
		}
		err := apply(ctx, names)
		if err == nil {
			return nil
		}
		if command.IsNoOp(err) {
			logger.Infof("maps: %s already settled, treating as no-op: %v", op, err)
			return nil
		}
		te, ok := command.AsTransportError(err)
		if !ok || te.Kind != command.KindRejected || te.Reason != command.ReasonInvalidName {
			return err
		}
		lastErr = err
		if i+1 < len(variants) {
			logger.Warnf("maps: %s rejected names %v, retrying with variant payload: %v", op, names, err)
		}
	}
	return lastErr
}

func equalNames(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
