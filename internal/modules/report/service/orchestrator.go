package service

import (
	"context"
	"fmt"

	hclog "github.com/hashicorp/go-hclog"
	"golang.org/x/sync/errgroup"

	"vecino/internal/modules/report/domain"
	reportout "vecino/internal/modules/report/port/out"
	"vecino/internal/platform/clock"
	apperrors "vecino/internal/platform/errors"
	"vecino/internal/platform/id"
	"vecino/internal/platform/logging"
)

type Orchestrator struct {
	gateway     reportout.ReportGateway
	files       reportout.FileSource
	ledger      reportout.Ledger
	ids         id.Generator
	clock       clock.Clock
	concurrency int
	logger      hclog.Logger
}

type Option func(*Orchestrator)

func WithLedger(ledger reportout.Ledger) Option {
	return func(o *Orchestrator) { o.ledger = ledger }
}

// WithConcurrency allows up to n evidence uploads in flight. The default of
// 1 uploads in order.
func WithConcurrency(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.concurrency = n
		}
	}
}

func WithLogger(logger hclog.Logger) Option {
	return func(o *Orchestrator) { o.logger = logger }
}

func NewOrchestrator(gateway reportout.ReportGateway, files reportout.FileSource, ids id.Generator, clk clock.Clock, opts ...Option) *Orchestrator {
	o := &Orchestrator{gateway: gateway, files: files, ids: ids, clock: clk, concurrency: 1}
	for _, opt := range opts {
		opt(o)
	}
	o.logger = logging.OrDiscard(o.logger)
	return o
}

// Submit creates the report, then uploads each evidence file against it.
// A create failure is returned both as a Failed result and as the error.
// Evidence failures never stop the remaining uploads and are not errors.
func (o *Orchestrator) Submit(ctx context.Context, draft domain.Draft, principal domain.Principal) (domain.Result, error) {
	if err := draft.Validate(); err != nil {
		return domain.Result{Outcome: domain.OutcomeFailed, Cause: err, Phase: domain.PhaseNotStarted}, err
	}
	if principal.AccessToken == "" {
		return domain.Result{Outcome: domain.OutcomeFailed, Cause: apperrors.ErrNoSession, Phase: domain.PhaseNotStarted}, apperrors.ErrNoSession
	}

	sub := domain.NewSubmission()
	attemptID := o.ids.New()
	logger := o.logger.With("attempt_id", attemptID)

	reportID, err := o.gateway.Create(ctx, principal, draft)
	if err != nil {
		if terr := sub.Transition(domain.PhaseNotStarted, domain.PhaseFailed); terr != nil {
			return domain.Result{}, terr
		}
		logger.Warn("create report failed", "error", err)
		result := domain.Result{AttemptID: attemptID, Outcome: domain.OutcomeFailed, Cause: err, Phase: sub.Phase()}
		o.record(ctx, domain.AttemptSubmit, draft.Title, result, draft.Evidence, nil)
		return result, err
	}
	if err := sub.Transition(domain.PhaseNotStarted, domain.PhaseCreated); err != nil {
		return domain.Result{}, err
	}
	logger.Info("report created", "report_id", reportID, "evidence", len(draft.Evidence))

	result, statuses, err := o.evidencePhase(ctx, sub, principal, reportID, draft.Evidence)
	if err != nil {
		return domain.Result{}, err
	}
	result.AttemptID = attemptID
	o.record(ctx, domain.AttemptSubmit, draft.Title, result, draft.Evidence, statuses)
	return result, nil
}

// RetryEvidence runs only the evidence phase against an existing report.
// Without files, the failures recorded for that report are retried.
func (o *Orchestrator) RetryEvidence(ctx context.Context, reportID int, files []domain.LocalFile, principal domain.Principal) (domain.Result, error) {
	if reportID <= 0 {
		return domain.Result{}, apperrors.Required("publicacion_id")
	}
	if principal.AccessToken == "" {
		return domain.Result{}, apperrors.ErrNoSession
	}
	if len(files) == 0 {
		if o.ledger == nil {
			return domain.Result{}, apperrors.Required("evidencia")
		}
		recorded, err := o.ledger.FailedEvidence(ctx, reportID)
		if err != nil {
			return domain.Result{}, fmt.Errorf("load failed evidence: %w", err)
		}
		if len(recorded) == 0 {
			return domain.Result{}, fmt.Errorf("%w: no failed evidence recorded for report %d", apperrors.ErrNotFound, reportID)
		}
		files = recorded
	}

	sub := domain.ResumeSubmission()
	result, statuses, err := o.evidencePhase(ctx, sub, principal, reportID, files)
	if err != nil {
		return domain.Result{}, err
	}
	result.AttemptID = o.ids.New()
	o.record(ctx, domain.AttemptRetry, "", result, files, statuses)
	return result, nil
}

func (o *Orchestrator) Attempts(ctx context.Context, limit int) ([]domain.Attempt, error) {
	if o.ledger == nil {
		return nil, nil
	}
	return o.ledger.List(ctx, limit)
}

func (o *Orchestrator) evidencePhase(ctx context.Context, sub *domain.Submission, principal domain.Principal, reportID int, files []domain.LocalFile) (domain.Result, []uploadStatus, error) {
	statuses := o.uploadAll(ctx, principal, reportID, files)
	failures := make([]domain.EvidenceFailure, 0)
	for i, st := range statuses {
		if st.err != nil {
			failures = append(failures, domain.EvidenceFailure{Index: i, FileName: files[i].Name(), URI: files[i].URI, Err: st.err})
		}
	}

	outcome, next := domain.OutcomeCreated, domain.PhaseAllEvidenceUploaded
	if len(failures) > 0 {
		outcome, next = domain.OutcomeCreatedWithEvidenceFailures, domain.PhaseSomeEvidenceFailed
		o.logger.Warn("some evidence failed", "report_id", reportID, "failed", len(failures), "total", len(files))
	}
	if err := sub.Transition(domain.PhaseCreated, next); err != nil {
		return domain.Result{}, nil, err
	}
	if err := sub.Transition(next, domain.PhaseDone); err != nil {
		return domain.Result{}, nil, err
	}
	if len(failures) == 0 {
		failures = nil
	}
	return domain.Result{Outcome: outcome, ReportID: reportID, Failures: failures, Phase: sub.Phase()}, statuses, nil
}

type uploadStatus struct {
	mimeType string
	err      error
}

func (o *Orchestrator) uploadAll(ctx context.Context, principal domain.Principal, reportID int, files []domain.LocalFile) []uploadStatus {
	statuses := make([]uploadStatus, len(files))
	if o.concurrency <= 1 {
		for i, f := range files {
			statuses[i] = o.uploadOne(ctx, principal, reportID, f)
		}
		return statuses
	}
	var g errgroup.Group
	g.SetLimit(o.concurrency)
	for i, f := range files {
		g.Go(func() error {
			statuses[i] = o.uploadOne(ctx, principal, reportID, f)
			return nil
		})
	}
	_ = g.Wait()
	return statuses
}

func (o *Orchestrator) uploadOne(ctx context.Context, principal domain.Principal, reportID int, file domain.LocalFile) uploadStatus {
	if err := ctx.Err(); err != nil {
		return uploadStatus{err: err}
	}
	opened, err := o.files.Open(ctx, file)
	if err != nil {
		return uploadStatus{err: fmt.Errorf("open %s: %w", file.Name(), err)}
	}
	defer opened.Content.Close()

	resolved := domain.LocalFile{URI: file.URI, FileName: opened.FileName, MimeType: opened.MimeType}
	upload := reportout.Upload{
		FileName:  resolved.Name(),
		MimeType:  opened.MimeType,
		Extension: resolved.Extension(),
		Content:   opened.Content,
	}
	if err := o.gateway.UploadEvidence(ctx, principal, reportID, upload); err != nil {
		o.logger.Debug("evidence upload failed", "report_id", reportID, "file", upload.FileName, "error", err)
		return uploadStatus{mimeType: opened.MimeType, err: err}
	}
	return uploadStatus{mimeType: opened.MimeType}
}

func (o *Orchestrator) record(ctx context.Context, kind domain.AttemptKind, title string, result domain.Result, files []domain.LocalFile, statuses []uploadStatus) {
	if o.ledger == nil {
		return
	}
	attempt := domain.Attempt{
		ID:        result.AttemptID,
		Kind:      kind,
		ReportID:  result.ReportID,
		Outcome:   result.Outcome,
		Title:     title,
		CreatedAt: o.clock.Now(),
	}
	if result.Cause != nil {
		attempt.Cause = apperrors.UserMessage(result.Cause)
	}
	for i, f := range files {
		rec := domain.EvidenceRecord{Index: i, FileName: f.Name(), URI: f.URI, MimeType: f.MimeType, Status: domain.EvidenceFailed}
		switch {
		case statuses == nil:
			rec.Error = "not attempted"
		case statuses[i].err != nil:
			rec.Error = statuses[i].err.Error()
		default:
			rec.Status = domain.EvidenceUploaded
		}
		if statuses != nil && statuses[i].mimeType != "" {
			rec.MimeType = statuses[i].mimeType
		}
		attempt.Evidence = append(attempt.Evidence, rec)
	}
	if err := o.ledger.Record(context.WithoutCancel(ctx), attempt); err != nil {
		o.logger.Warn("record submission attempt failed", "attempt_id", attempt.ID, "error", err)
	}
}
