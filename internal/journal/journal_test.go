package journal

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/codecoach/client/config"
	"github.com/codecoach/client/types"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	entries []types.JournalEntry
	err     error
}

func (f *fakeStore) Create(_ context.Context, e types.JournalEntry) (types.JournalEntry, error) {
	if f.err != nil {
		return types.JournalEntry{}, f.err
	}
	f.entries = append(f.entries, e)
	return e, nil
}

type fakeArchive struct {
	reports map[string][]byte
	err     error
}

func (f *fakeArchive) Archive(_ context.Context, problemID string, id uuid.UUID, report []byte) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	key := "reports/" + problemID + "/" + id.String() + ".json"
	if f.reports == nil {
		f.reports = map[string][]byte{}
	}
	f.reports[key] = report
	return key, nil
}

type fakePublisher struct {
	entries []types.JournalEntry
}

func (f *fakePublisher) PublishEntry(_ context.Context, e types.JournalEntry) error {
	f.entries = append(f.entries, e)
	return nil
}

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func sampleResponse() types.EvaluationResponse {
	return types.EvaluationResponse{
		SubmissionID:  "s-1",
		OverallStatus: types.VerdictWrongAnswer,
		Tests: []types.TestResult{
			{ID: "1", Status: types.VerdictAccepted, TimeMs: 10},
			{ID: "2", Status: types.VerdictWrongAnswer, TimeMs: 15, MemoryKb: types.IntPtr(512)},
		},
	}
}

func TestFromEvaluation(t *testing.T) {
	rec, err := FromEvaluation("two-sum", "cpp", "int main(){}", sampleResponse())
	require.NoError(t, err)

	assert.Equal(t, types.EntryEvaluation, rec.Entry.Kind)
	assert.Equal(t, types.VerdictWrongAnswer, rec.Entry.Verdict)
	assert.Equal(t, 15, rec.Entry.MaxTimeMs)
	assert.Equal(t, 512, rec.Entry.MaxMemoryKb)
	assert.Equal(t, 1, rec.Entry.Passed)
	assert.Equal(t, 2, rec.Entry.Total)
	assert.Equal(t, []string{"2"}, rec.Entry.FailingTests)
	assert.Len(t, rec.Entry.SourceSHA256, 64)

	var report types.EvaluationResponse
	require.NoError(t, json.Unmarshal(rec.Report, &report))
	assert.Equal(t, sampleResponse(), report)
}

func TestFromAnalysis(t *testing.T) {
	rec, err := FromAnalysis("two-sum", "x", types.FailedAnalysis("Error: timeout"))
	require.NoError(t, err)
	assert.Equal(t, types.EntryAnalysis, rec.Entry.Kind)
	assert.False(t, rec.Entry.AnalysisSuccess)
	assert.Equal(t, "Error: timeout", rec.Entry.AnalysisError)
	assert.NotNil(t, rec.Entry.FailingTests)
}

func TestFromAnalysisUnencodableReport(t *testing.T) {
	res := types.AnalysisResult{Success: true, Complexity: "O(n)"}
	res.Details.ExecutionTimes = []float64{1, math.Inf(1)}

	_, err := FromAnalysis("two-sum", "x", res)
	assert.ErrorContains(t, err, "encode analysis report")
}

func mustRecord(t *testing.T) func(Record, error) Record {
	return func(rec Record, err error) Record {
		t.Helper()
		require.NoError(t, err)
		return rec
	}
}

func TestRecordFansOutToEverySink(t *testing.T) {
	st := &fakeStore{}
	ar := &fakeArchive{}
	pub := &fakePublisher{}
	j := New(zerolog.Nop(), WithStore(st), WithArchive(ar), WithPublisher(pub), WithClock(func() time.Time { return fixedNow }))
	require.True(t, j.Enabled())

	require.NoError(t, j.Record(context.Background(), mustRecord(t)(FromEvaluation("two-sum", "cpp", "src", sampleResponse()))))

	require.Len(t, st.entries, 1)
	require.Len(t, pub.entries, 1)
	entry := st.entries[0]
	assert.NotEqual(t, uuid.Nil, entry.ID)
	assert.Equal(t, fixedNow, entry.CreatedAt)
	assert.Equal(t, "reports/two-sum/"+entry.ID.String()+".json", entry.ReportKey)
	assert.Equal(t, entry, pub.entries[0])
	assert.Contains(t, ar.reports, entry.ReportKey)
}

func TestRecordContinuesPastFailingSinks(t *testing.T) {
	st := &fakeStore{err: errors.New("db down")}
	ar := &fakeArchive{err: errors.New("bucket gone")}
	pub := &fakePublisher{}
	j := New(zerolog.Nop(), WithStore(st), WithArchive(ar), WithPublisher(pub))

	err := j.Record(context.Background(), mustRecord(t)(FromAnalysis("p", "x", types.AnalysisResult{Success: true, Complexity: "O(1)"})))
	require.Error(t, err)
	assert.ErrorContains(t, err, "db down")
	assert.ErrorContains(t, err, "bucket gone")

	require.Len(t, pub.entries, 1)
	assert.Empty(t, pub.entries[0].ReportKey)
}

func TestEmptyJournalIsDisabled(t *testing.T) {
	j := New(zerolog.Nop())
	assert.False(t, j.Enabled())
	assert.NoError(t, j.Record(context.Background(), mustRecord(t)(FromAnalysis("p", "", types.AnalysisResult{}))))
	assert.NoError(t, j.Close())
}

func TestOpenWithNothingConfigured(t *testing.T) {
	j, sinks, err := Open(context.Background(), config.JournalConfig{StorageBackend: "none", MQBackend: "none"}, zerolog.Nop())
	require.NoError(t, err)
	assert.False(t, j.Enabled())
	assert.Nil(t, sinks.Store)
	assert.Nil(t, sinks.Archive)
	assert.Nil(t, sinks.Feed)
}

func TestOpenReportsBadBackend(t *testing.T) {
	_, _, err := Open(context.Background(), config.JournalConfig{StorageBackend: "floppy"}, zerolog.Nop())
	assert.ErrorContains(t, err, "open report archive")
}
