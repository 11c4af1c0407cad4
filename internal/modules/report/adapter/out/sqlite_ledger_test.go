package out_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	reportadapter "vecino/internal/modules/report/adapter/out"
	"vecino/internal/modules/report/domain"
)

func TestSQLiteLedgerRecordsAttempts(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state", "vecino.db")
	ledger, err := reportadapter.NewSQLiteLedger(path)
	if err != nil {
		t.Fatalf("open ledger: %v", err)
	}
	base := time.Date(2024, 11, 4, 12, 0, 0, 0, time.UTC)

	first := domain.Attempt{
		ID: "a-1", Kind: domain.AttemptSubmit, ReportID: 101, Outcome: domain.OutcomeCreatedWithEvidenceFailures,
		Title: "Microbasural", CreatedAt: base,
		Evidence: []domain.EvidenceRecord{
			{Index: 0, FileName: "a.jpg", URI: "/tmp/a.jpg", MimeType: "image/jpeg", Status: domain.EvidenceUploaded},
			{Index: 1, FileName: "b.jpg", URI: "/tmp/b.jpg", MimeType: "image/jpeg", Status: domain.EvidenceFailed, Error: "500"},
		},
	}
	failed := domain.Attempt{ID: "a-2", Kind: domain.AttemptSubmit, Outcome: domain.OutcomeFailed, Title: "Bache", Cause: "sin conexión", CreatedAt: base.Add(time.Minute)}
	for _, a := range []domain.Attempt{first, failed} {
		if err := ledger.Record(ctx, a); err != nil {
			t.Fatalf("record %s: %v", a.ID, err)
		}
	}

	attempts, err := ledger.List(ctx, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(attempts) != 2 || attempts[0].ID != "a-2" || attempts[1].ID != "a-1" {
		t.Fatalf("expected newest first, got %+v", attempts)
	}
	if attempts[0].Cause != "sin conexión" || !attempts[1].CreatedAt.Equal(base) || len(attempts[1].Evidence) != 2 {
		t.Fatalf("unexpected attempt contents %+v", attempts)
	}

	files, err := ledger.FailedEvidence(ctx, 101)
	if err != nil {
		t.Fatalf("failed evidence: %v", err)
	}
	if len(files) != 1 || files[0].URI != "/tmp/b.jpg" || files[0].FileName != "b.jpg" {
		t.Fatalf("unexpected failed evidence %+v", files)
	}
	if err := ledger.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := reportadapter.NewSQLiteLedger(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	t.Cleanup(func() { _ = reopened.Close() })
	files, err = reopened.FailedEvidence(ctx, 999)
	if err != nil || len(files) != 0 {
		t.Fatalf("unknown report has nothing to retry: %v %+v", err, files)
	}
	limited, err := reopened.List(ctx, 1)
	if err != nil || len(limited) != 1 {
		t.Fatalf("limit not applied: %v %d", err, len(limited))
	}
}
