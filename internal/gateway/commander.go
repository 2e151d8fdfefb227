// Package gateway wires the two rotation transports together. The
// Commander always prefers the structured CRCON channel and replays failed
// operations over the raw RCON v2 socket, translating them to the limited
// rotlist/rotadd/rotdel command set.
package gateway

import (
	"context"
	"fmt"
	"time"

	"hllrotate/internal/gateway/command"
	"hllrotate/internal/gateway/crcon"
	"hllrotate/internal/gateway/rconv2"
	"hllrotate/internal/logger"
	"hllrotate/internal/pkg/circuit"
)

// RotationCommander is the transport surface the enforcement loop and the
// canonicalizer depend on. *Commander is the production implementation;
// tests substitute mocks.
type RotationCommander interface {
	CurrentRotation(ctx context.Context) ([]command.MapEntry, error)
	AddToRotation(ctx context.Context, names []string) error
	RemoveFromRotation(ctx context.Context, names []string) error
	MapCatalog(ctx context.Context) ([]command.MapEntry, error)
}

// Commander executes rotation operations with structured-first failover.
type Commander struct {
	structured *crcon.Client
	raw        *rconv2.Client
	breaker    *circuit.CircuitBreaker
}

// NewCommander builds the failover commander. Either transport may be nil,
// but not both.
func NewCommander(structured *crcon.Client, raw *rconv2.Client) (*Commander, error) {
	if structured == nil && raw == nil {
		return nil, fmt.Errorf("commander requires at least one transport")
	}
	return &Commander{
		structured: structured,
		raw:        raw,
		breaker:    circuit.NewCircuitBreaker("crcon", 3, 2*time.Minute),
	}, nil
}

// CurrentRotation fetches the live rotation snapshot.
func (c *Commander) CurrentRotation(ctx context.Context) ([]command.MapEntry, error) {
	if c.useStructured("get_map_rotation") {
		entries, err := c.structured.GetMapRotation(ctx)
		if done, err := c.settle("get_map_rotation", err); done {
			return entries, err
		}
	}
	if c.raw == nil {
		return nil, fmt.Errorf("get_map_rotation: no transport available")
	}
	return c.raw.RotationList(ctx)
}

// AddToRotation appends names to the rotation queue in order.
func (c *Commander) AddToRotation(ctx context.Context, names []string) error {
	if len(names) == 0 {
		return nil
	}
	if c.useStructured("add_maps_to_rotation") {
		err := c.structured.AddMapsToRotation(ctx, names)
		if done, err := c.settle("add_maps_to_rotation", err); done {
			return err
		}
	}
	if c.raw == nil {
		return fmt.Errorf("add_maps_to_rotation: no transport available")
	}
	return c.rawEach(ctx, names, c.raw.RotationAdd)
}

// RemoveFromRotation removes names from the rotation queue.
func (c *Commander) RemoveFromRotation(ctx context.Context, names []string) error {
	if len(names) == 0 {
		return nil
	}
	if c.useStructured("remove_maps_from_rotation") {
		err := c.structured.RemoveMapsFromRotation(ctx, names)
		if done, err := c.settle("remove_maps_from_rotation", err); done {
			return err
		}
	}
	if c.raw == nil {
		return fmt.Errorf("remove_maps_from_rotation: no transport available")
	}
	return c.rawEach(ctx, names, c.raw.RotationDelete)
}

// MapCatalog fetches the server's map catalog. The raw protocol has no
// catalog command, so there is no fallback; callers degrade gracefully.
func (c *Commander) MapCatalog(ctx context.Context) ([]command.MapEntry, error) {
	if c.structured == nil {
		return nil, fmt.Errorf("get_maps: structured transport not configured")
	}
	if !c.breaker.Allow() {
		return nil, fmt.Errorf("get_maps: structured transport circuit open")
	}
	entries, err := c.structured.GetMaps(ctx)
	if err != nil {
		c.breaker.RecordFailure()
		return nil, err
	}
	c.breaker.RecordSuccess()
	return entries, nil
}

func (c *Commander) useStructured(op string) bool {
	if c.structured == nil {
		return false
	}
	if !c.breaker.Allow() {
		logger.Debugf("commander: circuit open, routing %s to rconv2", op)
		return false
	}
	return true
}

// settle decides whether a structured-transport outcome is final. A nil
// error and a Rejected error are both definitive server answers; anything
// else counts against the breaker and falls through to the raw transport
// when one is configured.
func (c *Commander) settle(op string, err error) (bool, error) {
	if err == nil {
		c.breaker.RecordSuccess()
		return true, nil
	}
	if te, ok := command.AsTransportError(err); ok && te.Kind == command.KindRejected {
		c.breaker.RecordSuccess()
		return true, err
	}
	c.breaker.RecordFailure()
	if c.raw == nil {
		return true, err
	}
	logger.Warnf("commander: %s failed on crcon, falling back to rconv2: %v", op, err)
	return false, nil
}

// rawEach replays a multi-name mutation as per-name raw commands. A
// not-applicable rejection for a single name is an idempotent no-op and
// does not abort the remainder.
func (c *Commander) rawEach(ctx context.Context, names []string, op func(context.Context, string) error) error {
	for _, name := range names {
		if err := op(ctx, name); err != nil {
			if command.IsNoOp(err) {
				logger.Debugf("commander: rconv2 reports %q already settled: %v", name, err)
				continue
			}
			return err
		}
	}
	return nil
}
