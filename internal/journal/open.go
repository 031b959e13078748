package journal

import (
	"context"
	"errors"
	"fmt"

	"github.com/codecoach/client/config"
	"github.com/codecoach/client/internal/db"
	"github.com/codecoach/client/internal/mq"
	"github.com/codecoach/client/internal/storage"
	"github.com/codecoach/client/internal/store"
	"github.com/rs/zerolog"
)

// Sinks holds the concrete backends Open connected, for commands that read
// the journal back.
type Sinks struct {
	Store   *store.JournalRepository
	Archive *storage.Storage
	Feed    *mq.Feed
}

// Open connects every sink enabled in cfg. A journal with no sinks is
// valid and records nothing. On error, sinks opened so far are closed.
func Open(ctx context.Context, cfg config.JournalConfig, logger zerolog.Logger) (*Journal, Sinks, error) {
	var (
		sinks   Sinks
		opts    []Option
		closers []func() error
	)
	fail := func(err error) (*Journal, Sinks, error) {
		for _, c := range closers {
			_ = c()
		}
		return nil, Sinks{}, err
	}

	if cfg.DatabaseEnabled {
		conn, err := db.Open(ctx, cfg.Database)
		if err != nil {
			return fail(fmt.Errorf("open journal database: %w", err))
		}
		closers = append(closers, conn.Close)
		sinks.Store = store.NewJournalRepository(conn)
		opts = append(opts, WithStore(sinks.Store))
	}

	archive, err := storage.Open(ctx, cfg)
	if err != nil {
		return fail(fmt.Errorf("open report archive: %w", err))
	}
	if archive != nil {
		sinks.Archive = archive
		opts = append(opts, WithArchive(archive))
	}

	broker, err := mq.Open(ctx, cfg)
	if err != nil {
		return fail(fmt.Errorf("open results feed: %w", err))
	}
	if broker != nil {
		closers = append(closers, broker.Close)
		sinks.Feed = mq.NewFeed(broker, cfg.MQTopic)
		opts = append(opts, WithPublisher(sinks.Feed))
	}

	j := New(logger, opts...)
	for _, c := range closers {
		j.onClose(c)
	}
	return j, sinks, nil
}

// ErrSinkDisabled is returned by commands that need a sink the
// configuration leaves off.
var ErrSinkDisabled = errors.New("journal sink not configured")
