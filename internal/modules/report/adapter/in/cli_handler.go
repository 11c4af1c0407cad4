package in

import (
	"context"

	reportdto "vecino/internal/modules/report/dto"
	reportin "vecino/internal/modules/report/port/in"
)

type CLIHandler struct {
	usecase reportin.Usecase
}

func NewCLIHandler(usecase reportin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Submit(ctx context.Context, input reportdto.SubmitInput) (reportdto.SubmitOutput, error) {
	return h.usecase.Submit(ctx, input)
}

func (h CLIHandler) RetryEvidence(ctx context.Context, reportID int, paths []string) (reportdto.SubmitOutput, error) {
	evidence := make([]reportdto.EvidenceInput, 0, len(paths))
	for _, p := range paths {
		evidence = append(evidence, reportdto.EvidenceInput{Path: p})
	}
	return h.usecase.RetryEvidence(ctx, reportdto.RetryInput{ReportID: reportID, Evidence: evidence})
}

func (h CLIHandler) Attempts(ctx context.Context, limit int) ([]reportdto.AttemptOutput, error) {
	return h.usecase.Attempts(ctx, limit)
}
