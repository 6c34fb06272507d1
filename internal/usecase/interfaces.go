package usecase

import (
	"context"

	"github.com/xavierca1/astroservice/internal/entity"
)

// Evaluator maps birth facts to categorized places. It must be pure.
type Evaluator interface {
	Evaluate(birthDate, birthTime, birthPlace string) entity.EvaluationResult
}

type EvaluatorFunc func(birthDate, birthTime, birthPlace string) entity.EvaluationResult

func (f EvaluatorFunc) Evaluate(birthDate, birthTime, birthPlace string) entity.EvaluationResult {
	return f(birthDate, birthTime, birthPlace)
}

// DeliveryChannel gets the preview to the lead. Send never returns an
// error: every failure is folded into the outcome.
type DeliveryChannel interface {
	Name() string
	// Destination extracts the address this channel sends to; "" when the
	// lead has none.
	Destination(lead entity.Lead) string
	// DestinationField names the lead field Destination reads, for
	// validation messages.
	DestinationField() string
	// Mandatory channels turn a failed send into a request failure.
	Mandatory() bool
	Send(ctx context.Context, destination, text string) entity.DeliveryOutcome
}
