package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/codecoach/client/internal/analyzer"
	"github.com/codecoach/client/internal/controller"
	"github.com/codecoach/client/internal/evaluation"
	"github.com/codecoach/client/internal/gateway"
	"github.com/codecoach/client/internal/journal"
	"github.com/codecoach/client/internal/problems"
)

func problemsClient() *problems.Client {
	gw := gateway.New(cfg.Repository.BaseURL, cfg.Repository.Timeout, gateway.WithLogger(log))
	return problems.New(gw, log)
}

func evaluationClient() *evaluation.Client {
	gw := gateway.New(cfg.Evaluation.BaseURL, cfg.Evaluation.Timeout, gateway.WithLogger(log))
	return evaluation.New(gw, log)
}

func analyzerClient() *analyzer.Client {
	gw := gateway.New(cfg.Analyzer.BaseURL, cfg.Analyzer.Timeout, gateway.WithLogger(log))
	return analyzer.New(gw, log)
}

// session builds a controller over the configured backends. Completed
// results are recorded to the journal when one is configured; the returned
// func closes it.
func session(ctx context.Context) (*controller.Controller, func(), error) {
	j, _, err := journal.Open(ctx, cfg.Journal, log)
	if err != nil {
		return nil, nil, err
	}

	var opts []controller.Option
	if j.Enabled() {
		opts = append(opts, controller.WithRecorder(j))
	}
	ctrl := controller.New(ctx, problemsClient(), evaluationClient(), analyzerClient(), log, opts...)

	closeFn := func() {
		if err := j.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to close journal")
		}
	}
	return ctrl, closeFn, nil
}

// readSource reads a file, or stdin when path is "-".
func readSource(path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func printStatus(ctrl *controller.Controller) {
	fmt.Fprintln(os.Stderr, ctrl.Snapshot().Status)
}
