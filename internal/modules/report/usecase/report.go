package usecase

import (
	"context"
	"strings"

	authin "vecino/internal/modules/auth/port/in"
	catalogin "vecino/internal/modules/catalog/port/in"
	locationdto "vecino/internal/modules/location/dto"
	locationin "vecino/internal/modules/location/port/in"
	"vecino/internal/modules/report/domain"
	reportdto "vecino/internal/modules/report/dto"
	reportin "vecino/internal/modules/report/port/in"
	"vecino/internal/modules/report/service"
	apperrors "vecino/internal/platform/errors"
)

type Interactor struct {
	orchestrator *service.Orchestrator
	auth         authin.Usecase
	catalog      catalogin.Usecase
	location     locationin.Usecase
}

func NewInteractor(orchestrator *service.Orchestrator, auth authin.Usecase, catalog catalogin.Usecase, location locationin.Usecase) reportin.Usecase {
	return &Interactor{orchestrator: orchestrator, auth: auth, catalog: catalog, location: location}
}

func (i *Interactor) Submit(ctx context.Context, input reportdto.SubmitInput) (reportdto.SubmitOutput, error) {
	draft := domain.Draft{
		Title:               strings.TrimSpace(input.Title),
		Description:         strings.TrimSpace(input.Description),
		StreetName:          strings.TrimSpace(input.StreetName),
		StreetNumber:        strings.TrimSpace(input.StreetNumber),
		CategoryID:          input.CategoryID,
		NeighborhoodBoardID: input.NeighborhoodBoardID,
		Evidence:            toLocalFiles(input.Evidence),
	}
	if err := draft.ValidateFields(); err != nil {
		return reportdto.SubmitOutput{}, err
	}
	principal, err := i.principal(ctx)
	if err != nil {
		return reportdto.SubmitOutput{}, err
	}

	directory, err := i.catalog.OpenDirectory(ctx)
	if err != nil {
		return reportdto.SubmitOutput{}, err
	}
	category, ok := directory.Find(draft.CategoryID)
	if !ok {
		return reportdto.SubmitOutput{}, apperrors.Invalid("categoria", "is not a known category")
	}
	draft.DepartmentID = category.DepartmentID
	if draft.NeighborhoodBoardID == 0 {
		draft.NeighborhoodBoardID = category.ID
	}

	resolveInput := locationdto.ResolveInput{}
	if input.Coordinate != nil {
		resolveInput.Explicit = &locationdto.CoordinateInput{Latitude: input.Coordinate.Latitude, Longitude: input.Coordinate.Longitude}
	}
	resolved, err := i.location.Resolve(ctx, resolveInput)
	if err != nil {
		return reportdto.SubmitOutput{}, err
	}
	draft.Coordinate = &domain.Coordinate{Latitude: resolved.Latitude, Longitude: resolved.Longitude}

	result, err := i.orchestrator.Submit(ctx, draft, principal)
	out := toOutput(result)
	out.Location = reportdto.LocationOutput{
		Latitude:          resolved.Latitude,
		Longitude:         resolved.Longitude,
		WasDeviceLocation: resolved.WasDeviceLocation,
		Reason:            resolved.Reason,
	}
	return out, err
}

func (i *Interactor) RetryEvidence(ctx context.Context, input reportdto.RetryInput) (reportdto.SubmitOutput, error) {
	principal, err := i.principal(ctx)
	if err != nil {
		return reportdto.SubmitOutput{}, err
	}
	result, err := i.orchestrator.RetryEvidence(ctx, input.ReportID, toLocalFiles(input.Evidence), principal)
	if err != nil {
		return reportdto.SubmitOutput{}, err
	}
	return toOutput(result), nil
}

func (i *Interactor) Attempts(ctx context.Context, limit int) ([]reportdto.AttemptOutput, error) {
	attempts, err := i.orchestrator.Attempts(ctx, limit)
	if err != nil {
		return nil, err
	}
	out := make([]reportdto.AttemptOutput, 0, len(attempts))
	for _, a := range attempts {
		item := reportdto.AttemptOutput{
			ID:        a.ID,
			Kind:      string(a.Kind),
			ReportID:  a.ReportID,
			Outcome:   string(a.Outcome),
			Title:     a.Title,
			Cause:     a.Cause,
			CreatedAt: a.CreatedAt,
		}
		for _, ev := range a.Evidence {
			if ev.Status == domain.EvidenceUploaded {
				item.Uploaded++
				continue
			}
			item.Failed = append(item.Failed, reportdto.FailureOutput{Index: ev.Index, FileName: ev.FileName, URI: ev.URI, Error: ev.Error})
		}
		out = append(out, item)
	}
	return out, nil
}

func (i *Interactor) principal(ctx context.Context) (domain.Principal, error) {
	session, err := i.auth.Current(ctx)
	if err != nil {
		return domain.Principal{}, err
	}
	return domain.Principal{AccessToken: session.AccessToken, UserID: session.UserID}, nil
}

func toLocalFiles(in []reportdto.EvidenceInput) []domain.LocalFile {
	if len(in) == 0 {
		return nil
	}
	out := make([]domain.LocalFile, 0, len(in))
	for _, e := range in {
		out = append(out, domain.LocalFile{URI: e.Path, MimeType: e.MimeType, FileName: e.FileName})
	}
	return out
}

func toOutput(result domain.Result) reportdto.SubmitOutput {
	out := reportdto.SubmitOutput{
		AttemptID: result.AttemptID,
		Outcome:   string(result.Outcome),
		ReportID:  result.ReportID,
	}
	for _, f := range result.Failures {
		out.Failures = append(out.Failures, reportdto.FailureOutput{Index: f.Index, FileName: f.FileName, URI: f.URI, Error: f.Err.Error()})
	}
	return out
}
