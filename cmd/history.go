/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/codecoach/client/internal/journal"
	"github.com/codecoach/client/internal/render"
	"github.com/codecoach/client/internal/store"
	"github.com/codecoach/client/types"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var (
	historyProblem string
	historyKind    string
	historyLimit   int
)

// historyCmd represents the history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded submissions and analyses",
	Long: `List recorded submissions and analyses, newest first.

Requires the journal database (JOURNAL_DB_ENABLED=true and DB_*).`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withJournal(cmd.Context(), func(ctx context.Context, sinks journal.Sinks) error {
			if sinks.Store == nil {
				return fmt.Errorf("history: %w", journal.ErrSinkDisabled)
			}
			entries, err := sinks.Store.List(ctx, types.JournalFilter{
				ProblemID: historyProblem,
				Kind:      types.EntryKind(historyKind),
				Limit:     historyLimit,
			})
			if err != nil {
				return err
			}
			fmt.Println(render.JournalEntries(entries))
			return nil
		})
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show <entry-id>",
	Short: "Show one journal entry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid entry id: %w", err)
		}
		return withJournal(cmd.Context(), func(ctx context.Context, sinks journal.Sinks) error {
			if sinks.Store == nil {
				return fmt.Errorf("history: %w", journal.ErrSinkDisabled)
			}
			entry, err := sinks.Store.Get(ctx, id)
			if errors.Is(err, store.ErrNotFound) {
				return fmt.Errorf("entry %s not found", id)
			}
			if err != nil {
				return err
			}
			fmt.Println(render.JournalEntry(entry))
			return nil
		})
	},
}

var historyDeleteCmd = &cobra.Command{
	Use:   "delete <entry-id>",
	Short: "Delete a journal entry and its archived report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid entry id: %w", err)
		}
		return withJournal(cmd.Context(), func(ctx context.Context, sinks journal.Sinks) error {
			if sinks.Store == nil {
				return fmt.Errorf("history: %w", journal.ErrSinkDisabled)
			}
			entry, err := sinks.Store.Get(ctx, id)
			if errors.Is(err, store.ErrNotFound) {
				return fmt.Errorf("entry %s not found", id)
			}
			if err != nil {
				return err
			}
			if entry.ReportKey != "" && sinks.Archive != nil {
				if err := sinks.Archive.Remove(ctx, entry.ReportKey); err != nil {
					log.Warn().Err(err).Str("key", entry.ReportKey).Msg("failed to remove archived report")
				}
			}
			if err := sinks.Store.Delete(ctx, id); err != nil {
				return err
			}
			fmt.Printf("Entry %s deleted\n", id)
			return nil
		})
	},
}

func withJournal(ctx context.Context, fn func(context.Context, journal.Sinks) error) error {
	j, sinks, err := journal.Open(ctx, cfg.Journal, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := j.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to close journal")
		}
	}()
	return fn(ctx, sinks)
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyShowCmd, historyDeleteCmd)

	historyCmd.Flags().StringVarP(&historyProblem, "problem", "p", "", "only entries for this problem")
	historyCmd.Flags().StringVar(&historyKind, "kind", "", "only entries of this kind (evaluation or analysis)")
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "maximum number of entries")
}
