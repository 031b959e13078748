//go:build e2e

package e2e

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/codecoach/client/config"
	"github.com/codecoach/client/internal/db"
	"github.com/codecoach/client/internal/journal"
	"github.com/codecoach/client/internal/store"
	"github.com/codecoach/client/types"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var conn *sql.DB

func TestMain(m *testing.M) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	root, err := repoRoot()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to locate repo root: %v\n", err)
		os.Exit(1)
	}

	if err := dockerCompose(ctx, root, "up", "-d", "postgres"); err != nil {
		fmt.Fprintf(os.Stderr, "failed to start docker compose: %v\n", err)
		os.Exit(1)
	}

	cfg := config.LoadConfig()
	conn, err = waitForPostgres(ctx, cfg.Journal.Database)
	if err != nil {
		fmt.Fprintf(os.Stderr, "postgres not ready: %v\n", err)
		_ = dockerCompose(context.Background(), root, "down")
		os.Exit(1)
	}

	if err := db.Migrate(conn); err != nil {
		fmt.Fprintf(os.Stderr, "failed to run migrations: %v\n", err)
		_ = conn.Close()
		_ = dockerCompose(context.Background(), root, "down")
		os.Exit(1)
	}

	code := m.Run()

	_ = conn.Close()
	_ = dockerCompose(context.Background(), root, "down")
	os.Exit(code)
}

func TestJournalRepositoryLifecycle(t *testing.T) {
	ctx := context.Background()
	repo := store.NewJournalRepository(conn)
	problemID := "e2e-" + uuid.NewString()

	first, err := repo.Create(ctx, types.JournalEntry{
		Kind:         types.EntryEvaluation,
		ProblemID:    problemID,
		Language:     "cpp",
		SourceSHA256: "abc",
		Verdict:      types.VerdictWrongAnswer,
		MaxTimeMs:    15,
		Passed:       1,
		Total:        2,
		FailingTests: []string{"2"},
		CreatedAt:    time.Now().UTC().Add(-time.Minute).Truncate(time.Microsecond),
	})
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, first.ID)

	second, err := repo.Create(ctx, types.JournalEntry{
		Kind:            types.EntryAnalysis,
		ProblemID:       problemID,
		SourceSHA256:    "abc",
		AnalysisSuccess: true,
		Complexity:      "O(n)",
		CreatedAt:       time.Now().UTC().Truncate(time.Microsecond),
	})
	require.NoError(t, err)

	got, err := repo.Get(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, first, got)

	listed, err := repo.List(ctx, types.JournalFilter{ProblemID: problemID})
	require.NoError(t, err)
	require.Len(t, listed, 2)
	assert.Equal(t, second.ID, listed[0].ID)
	assert.Equal(t, first.ID, listed[1].ID)

	onlyAnalyses, err := repo.List(ctx, types.JournalFilter{ProblemID: problemID, Kind: types.EntryAnalysis})
	require.NoError(t, err)
	require.Len(t, onlyAnalyses, 1)
	assert.Equal(t, "O(n)", onlyAnalyses[0].Complexity)

	require.NoError(t, repo.Delete(ctx, first.ID))
	_, err = repo.Get(ctx, first.ID)
	assert.True(t, errors.Is(err, store.ErrNotFound))
	assert.True(t, errors.Is(repo.Delete(ctx, first.ID), store.ErrNotFound))
}

func TestJournalRecordsToPostgres(t *testing.T) {
	ctx := context.Background()
	repo := store.NewJournalRepository(conn)
	j := journal.New(zerolog.Nop(), journal.WithStore(repo))

	problemID := "e2e-" + uuid.NewString()
	rec, err := journal.FromEvaluation(problemID, "cpp", "int main(){}", types.EvaluationResponse{
		OverallStatus: types.VerdictAccepted,
		Tests: []types.TestResult{
			{ID: "1", Status: types.VerdictAccepted, TimeMs: 3},
		},
	})
	require.NoError(t, err)
	require.NoError(t, j.Record(ctx, rec))

	listed, err := repo.List(ctx, types.JournalFilter{ProblemID: problemID})
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, types.VerdictAccepted, listed[0].Verdict)
	assert.Equal(t, 3, listed[0].MaxTimeMs)
	assert.Empty(t, listed[0].FailingTests)
}

func waitForPostgres(ctx context.Context, cfg config.DatabaseConfig) (*sql.DB, error) {
	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()

	for {
		conn, err := db.Open(ctx, cfg)
		if err == nil {
			return conn, nil
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("postgres ping timeout: %w", err)
		case <-ticker.C:
		}
	}
}

func dockerCompose(ctx context.Context, root string, args ...string) error {
	composeFile := filepath.Join(root, "development", "docker-compose.yml")
	baseArgs := append([]string{"compose", "-f", composeFile}, args...)
	cmd := exec.CommandContext(ctx, "docker", baseArgs...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

func repoRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New("go.mod not found")
		}
		dir = parent
	}
}
