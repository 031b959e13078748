/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/codecoach/client/internal/journal"
	"github.com/codecoach/client/internal/mq"
	"github.com/codecoach/client/internal/render"
	"github.com/codecoach/client/types"
	"github.com/spf13/cobra"
)

// feedCmd represents the feed command
var feedCmd = &cobra.Command{
	Use:   "feed",
	Short: "Follow results published by every codecoach client",
	Long: `Follow the results feed (MQ_BACKEND, MQ_TOPIC) and print each
recorded submission and analysis as it arrives. Stops on Ctrl-C.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		return withJournal(ctx, func(ctx context.Context, sinks journal.Sinks) error {
			if sinks.Feed == nil {
				return fmt.Errorf("feed: %w", journal.ErrSinkDisabled)
			}
			log.Info().Str("topic", sinks.Feed.Topic()).Msg("following results feed")

			err := sinks.Feed.Follow(ctx, func(_ context.Context, entry types.JournalEntry) error {
				fmt.Println(render.JournalEntry(entry))
				fmt.Println()
				return nil
			}, func(msg mq.Message, err error) {
				log.Warn().Err(err).Str("message_id", msg.ID).Msg("skipping feed message")
			})
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
	},
}

func init() {
	rootCmd.AddCommand(feedCmd)
}
