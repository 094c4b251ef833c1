package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/ignite/inbox-triage/internal/config"
	"github.com/ignite/inbox-triage/internal/service/memory"
)

var senderCols = []string{
	"user_id", "sender_email", "total_messages", "responded", "archived", "trashed",
	"marked_important", "marked_interesting", "marked_unimportant",
	"importance_weight", "last_interaction",
}

func TestSenderHistoryMissingSenderIsZeroValue(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewSenderRepo(db, config.Default().Scoring)

	mock.ExpectQuery("SELECT (.+) FROM triage_sender_stats").
		WithArgs("u1", "stranger@example.com").
		WillReturnRows(sqlmock.NewRows(senderCols))

	h, err := repo.SenderHistory(context.Background(), "u1", "stranger@example.com")
	if err != nil {
		t.Fatalf("SenderHistory() error: %v", err)
	}
	if h.TotalMessages != 0 || h.HasPrior {
		t.Errorf("missing sender should resolve to zero history, got %+v", h)
	}
}

func TestSenderHistoryDerivesRates(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewSenderRepo(db, config.Default().Scoring)

	last := time.Date(2026, 2, 27, 8, 0, 0, 0, time.UTC)
	mock.ExpectQuery("SELECT (.+) FROM triage_sender_stats").
		WithArgs("u1", "boss@corp.example.com").
		WillReturnRows(sqlmock.NewRows(senderCols).AddRow(
			"u1", "boss@corp.example.com", 10, 6, 2, 0, 2, 0, 0, 0.8, last,
		))

	h, err := repo.SenderHistory(context.Background(), "u1", "boss@corp.example.com")
	if err != nil {
		t.Fatalf("SenderHistory() error: %v", err)
	}
	if h.ResponseRate != 0.6 {
		t.Errorf("ResponseRate = %v, want 0.6", h.ResponseRate)
	}
	if !h.HasPrior || h.ImportanceScore != 0.8 {
		t.Errorf("prior not carried through: %+v", h)
	}
}

func TestSenderWeightNullVersusZero(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewSenderRepo(db, config.Default().Scoring)
	last := time.Date(2026, 2, 27, 8, 0, 0, 0, time.UTC)

	// NULL weight: never weighted, no prior.
	mock.ExpectQuery("SELECT (.+) FROM triage_sender_stats").
		WithArgs("u1", "fresh@example.com").
		WillReturnRows(sqlmock.NewRows(senderCols).AddRow(
			"u1", "fresh@example.com", 10, 3, 6, 0, 0, 0, 0, nil, last,
		))
	h, err := repo.SenderHistory(context.Background(), "u1", "fresh@example.com")
	if err != nil {
		t.Fatalf("SenderHistory() error: %v", err)
	}
	if h.HasPrior {
		t.Errorf("NULL weight should carry no prior: %+v", h)
	}

	// Explicit zero: the user weighted the sender down, still a prior.
	mock.ExpectQuery("SELECT (.+) FROM triage_sender_stats").
		WithArgs("u1", "vendor@example.com").
		WillReturnRows(sqlmock.NewRows(senderCols).AddRow(
			"u1", "vendor@example.com", 10, 3, 6, 0, 0, 0, 0, 0.0, last,
		))
	h, err = repo.SenderHistory(context.Background(), "u1", "vendor@example.com")
	if err != nil {
		t.Fatalf("SenderHistory() error: %v", err)
	}
	if !h.HasPrior || h.ImportanceScore != 0 {
		t.Errorf("explicit zero weight should remain a prior: %+v", h)
	}
}

func TestResetSenderWeightWritesNull(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewSenderRepo(db, config.Default().Scoring)

	mock.ExpectExec("UPDATE triage_sender_stats\\s+SET importance_weight = NULL").
		WithArgs("u1", "vendor@example.com").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.ResetSenderWeight(context.Background(), "u1", "vendor@example.com"); err != nil {
		t.Fatalf("ResetSenderWeight() error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestUpdateSenderWeightUnknownSender(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewSenderRepo(db, config.Default().Scoring)

	mock.ExpectExec("UPDATE triage_sender_stats").
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.UpdateSenderWeight(context.Background(), "u1", "ghost@example.com", 0.9); err != memory.ErrNotFound {
		t.Errorf("UpdateSenderWeight() error = %v, want ErrNotFound", err)
	}
}
