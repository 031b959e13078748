package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/codecoach/client/types"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

const (
	defaultListLimit = 20
	maxListLimit     = 500
)

const journalColumns = `
	id, kind, problem_id, language, source_sha256, verdict,
	max_time_ms, max_memory_kb, passed, total, failing_tests,
	analysis_success, complexity, analysis_error, report_key, created_at`

// JournalRepository handles persistence for journal entries.
type JournalRepository struct {
	db *sql.DB
}

func NewJournalRepository(db *sql.DB) *JournalRepository {
	return &JournalRepository{db: db}
}

func (r *JournalRepository) Create(ctx context.Context, entry types.JournalEntry) (types.JournalEntry, error) {
	if entry.ID == uuid.Nil {
		id, err := uuid.NewV7()
		if err != nil {
			return types.JournalEntry{}, err
		}
		entry.ID = id
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	if entry.FailingTests == nil {
		entry.FailingTests = []string{}
	}

	query := `INSERT INTO journal_entries (` + journalColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`
	_, err := r.db.ExecContext(
		ctx,
		query,
		entry.ID,
		entry.Kind,
		entry.ProblemID,
		entry.Language,
		entry.SourceSHA256,
		entry.Verdict,
		entry.MaxTimeMs,
		entry.MaxMemoryKb,
		entry.Passed,
		entry.Total,
		pq.Array(entry.FailingTests),
		entry.AnalysisSuccess,
		entry.Complexity,
		entry.AnalysisError,
		entry.ReportKey,
		entry.CreatedAt,
	)
	if err != nil {
		return types.JournalEntry{}, err
	}
	return entry, nil
}

func (r *JournalRepository) Get(ctx context.Context, id uuid.UUID) (types.JournalEntry, error) {
	query := `SELECT ` + journalColumns + ` FROM journal_entries WHERE id = $1`
	entry, err := scanEntry(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.JournalEntry{}, ErrNotFound
		}
		return types.JournalEntry{}, err
	}
	return entry, nil
}

// List returns the newest entries first.
func (r *JournalRepository) List(ctx context.Context, filter types.JournalFilter) ([]types.JournalEntry, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	var (
		where []string
		args  []any
	)
	if filter.ProblemID != "" {
		args = append(args, filter.ProblemID)
		where = append(where, fmt.Sprintf("problem_id = $%d", len(args)))
	}
	if filter.Kind != "" {
		if filter.Kind != types.EntryEvaluation && filter.Kind != types.EntryAnalysis {
			return nil, fmt.Errorf("%w: kind %q", ErrInvalidFilter, filter.Kind)
		}
		args = append(args, filter.Kind)
		where = append(where, fmt.Sprintf("kind = $%d", len(args)))
	}

	query := `SELECT ` + journalColumns + ` FROM journal_entries`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	args = append(args, limit)
	query += fmt.Sprintf(` ORDER BY created_at DESC, id DESC LIMIT $%d`, len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]types.JournalEntry, 0, limit)
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func (r *JournalRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM journal_entries WHERE id = $1`, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (types.JournalEntry, error) {
	var entry types.JournalEntry
	var failing pq.StringArray
	err := row.Scan(
		&entry.ID,
		&entry.Kind,
		&entry.ProblemID,
		&entry.Language,
		&entry.SourceSHA256,
		&entry.Verdict,
		&entry.MaxTimeMs,
		&entry.MaxMemoryKb,
		&entry.Passed,
		&entry.Total,
		&failing,
		&entry.AnalysisSuccess,
		&entry.Complexity,
		&entry.AnalysisError,
		&entry.ReportKey,
		&entry.CreatedAt,
	)
	if err != nil {
		return types.JournalEntry{}, err
	}
	entry.FailingTests = []string(failing)
	if entry.FailingTests == nil {
		entry.FailingTests = []string{}
	}
	entry.CreatedAt = entry.CreatedAt.UTC()
	return entry, nil
}
