package runner

import (
	"context"
	"fmt"

	"github.com/Cyclone1070/turnkit/internal/guardrail"
	"github.com/Cyclone1070/turnkit/internal/logging"
	"github.com/Cyclone1070/turnkit/internal/workflow"
)

func (s *runState) checkInput(ctx context.Context, text string) error {
	return s.check(ctx, guardrail.Input, s.active.InputGuardrails(), text)
}

func (s *runState) checkOutput(ctx context.Context, text string) error {
	return s.check(ctx, guardrail.Output, s.active.OutputGuardrails(), text)
}

// check runs guardrails in order and stops at the first block.
func (s *runState) check(ctx context.Context, dir guardrail.Direction, guards []guardrail.Guardrail, text string) error {
	for _, g := range guards {
		ctx, span := s.runner.startGuardrail(ctx, dir, g.Name())
		res, err := g.Evaluate(ctx, text)
		endSpan(span, err)
		if err != nil {
			return fmt.Errorf("%s guardrail %q: %w", dir, g.Name(), err)
		}

		s.runner.emit(workflow.GuardrailEvent{Direction: string(dir), Name: g.Name(), Blocked: res.Blocked})
		logging.Debug().With(
			logging.RunID(s.cfg.runID),
			logging.Direction(string(dir)),
			logging.Guardrail(g.Name()),
			logging.Blocked(res.Blocked),
		).Msg("guardrail evaluated")

		if res.Blocked {
			logging.Info().With(
				logging.RunID(s.cfg.runID),
				logging.Agent(s.active.Name()),
				logging.Direction(string(dir)),
				logging.Guardrail(g.Name()),
				logging.Reason(res.Reason()),
			).Msg("guardrail tripped")
			return &GuardrailBlockedError{
				Direction: dir,
				Guardrail: g.Name(),
				Agent:     s.active.Name(),
				Info:      res.Info,
			}
		}
	}
	return nil
}
