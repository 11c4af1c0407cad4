package in

import (
	"context"

	"vecino/internal/modules/report/dto"
)

type Usecase interface {
	// Submit creates the report and uploads its evidence. Partial evidence
	// failures are reported in the output, not as an error.
	Submit(ctx context.Context, input dto.SubmitInput) (dto.SubmitOutput, error)
	RetryEvidence(ctx context.Context, input dto.RetryInput) (dto.SubmitOutput, error)
	Attempts(ctx context.Context, limit int) ([]dto.AttemptOutput, error)
}
