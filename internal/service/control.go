package service

import (
	"context"

	"github.com/haulhire/leadpool-engine-go/internal/port"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var controlTracer = otel.Tracer("service/control")

// ControlService exposes the maintenance gate to operators. The gate is
// a single shared boolean with last-write-wins semantics; distribution
// reads through it on every invocation.
type ControlService struct {
	gate   port.ControlGate
	logger *zap.Logger
}

// NewControlService creates the maintenance control surface.
func NewControlService(gate port.ControlGate, logger *zap.Logger) *ControlService {
	return &ControlService{gate: gate, logger: logger}
}

// IsPaused reports the current maintenance state.
func (s *ControlService) IsPaused(ctx context.Context) (bool, error) {
	ctx, span := controlTracer.Start(ctx, "ControlService.IsPaused")
	defer span.End()

	return s.gate.IsPaused(ctx)
}

// SetPaused toggles maintenance mode. Reads are unaffected; only new
// distributions are suspended. Never auto-resets.
func (s *ControlService) SetPaused(ctx context.Context, paused bool) error {
	ctx, span := controlTracer.Start(ctx, "ControlService.SetPaused")
	defer span.End()

	if err := s.gate.SetPaused(ctx, paused); err != nil {
		return err
	}

	s.logger.Info("maintenance mode toggled", zap.Bool("paused", paused))
	return nil
}
