// Package journal records completed submissions and analyses to the
// optional sinks configured for the session: a postgres table, an object
// storage report archive and a results feed.
package journal

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/codecoach/client/types"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Record is an entry plus the full backend reply it summarizes.
type Record struct {
	Entry  types.JournalEntry
	Report []byte
}

// Recorder accepts completed results.
type Recorder interface {
	Record(ctx context.Context, rec Record) error
}

// EntryStore persists entries.
type EntryStore interface {
	Create(ctx context.Context, entry types.JournalEntry) (types.JournalEntry, error)
}

// ReportArchive stores full reports and returns the object key.
type ReportArchive interface {
	Archive(ctx context.Context, problemID string, id uuid.UUID, report []byte) (string, error)
}

// Publisher announces entries to feed subscribers.
type Publisher interface {
	PublishEntry(ctx context.Context, entry types.JournalEntry) error
}

type Option func(*Journal)

func WithStore(s EntryStore) Option {
	return func(j *Journal) { j.store = s }
}

func WithArchive(a ReportArchive) Option {
	return func(j *Journal) { j.archive = a }
}

func WithPublisher(p Publisher) Option {
	return func(j *Journal) { j.publisher = p }
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(j *Journal) { j.now = now }
}

// Journal fans each record out to every configured sink. A failing sink
// does not stop the others; all failures are returned joined.
type Journal struct {
	store     EntryStore
	archive   ReportArchive
	publisher Publisher
	logger    zerolog.Logger
	now       func() time.Time
	closers   []func() error
}

func New(logger zerolog.Logger, opts ...Option) *Journal {
	j := &Journal{
		logger: logger.With().Str("component", "journal").Logger(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

// Enabled reports whether at least one sink is configured.
func (j *Journal) Enabled() bool {
	return j.store != nil || j.archive != nil || j.publisher != nil
}

func (j *Journal) Record(ctx context.Context, rec Record) error {
	entry := rec.Entry
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = j.now().UTC()
	}
	if entry.FailingTests == nil {
		entry.FailingTests = []string{}
	}

	var errs []error
	if j.archive != nil && len(rec.Report) > 0 {
		key, err := j.archive.Archive(ctx, entry.ProblemID, entry.ID, rec.Report)
		if err != nil {
			errs = append(errs, fmt.Errorf("archive report: %w", err))
		} else {
			entry.ReportKey = key
		}
	}
	if j.store != nil {
		if _, err := j.store.Create(ctx, entry); err != nil {
			errs = append(errs, fmt.Errorf("store entry: %w", err))
		}
	}
	if j.publisher != nil {
		if err := j.publisher.PublishEntry(ctx, entry); err != nil {
			errs = append(errs, fmt.Errorf("publish entry: %w", err))
		}
	}

	err := errors.Join(errs...)
	if err != nil {
		j.logger.Warn().Err(err).Str("entry_id", entry.ID.String()).Msg("journal sink failed")
		return err
	}
	j.logger.Debug().
		Str("entry_id", entry.ID.String()).
		Str("kind", string(entry.Kind)).
		Str("problem_id", entry.ProblemID).
		Msg("journal entry recorded")
	return nil
}

// Close releases the connections opened for the sinks.
func (j *Journal) Close() error {
	var errs []error
	for _, c := range j.closers {
		errs = append(errs, c())
	}
	j.closers = nil
	return errors.Join(errs...)
}

func (j *Journal) onClose(fn func() error) {
	j.closers = append(j.closers, fn)
}
