/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"errors"
	"fmt"

	"github.com/codecoach/client/internal/render"
	"github.com/spf13/cobra"
)

var (
	analyzeProblem string
	analyzeWithRun bool
	analyzeConsole string
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze <source-file|->",
	Short: "Estimate the algorithmic complexity of a solution",
	Long: `Estimate the algorithmic complexity of a solution.

With --with-run the solution is first evaluated against --problem and the
test transcript is sent to the analyzer as empirical context.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if analyzeWithRun && analyzeProblem == "" {
			return errors.New("--with-run requires --problem")
		}
		if analyzeWithRun && analyzeConsole != "" {
			return errors.New("--with-run and --console cannot be combined")
		}
		code, err := readSource(args[0])
		if err != nil {
			return err
		}
		console := ""
		if analyzeConsole != "" {
			if console, err = readSource(analyzeConsole); err != nil {
				return err
			}
		}

		ctx := cmd.Context()
		ctrl, closeFn, err := session(ctx)
		if err != nil {
			return err
		}
		defer closeFn()

		if analyzeProblem != "" {
			if _, err := ctrl.Select(ctx, analyzeProblem); err != nil {
				printStatus(ctrl)
				return err
			}
		}
		if analyzeWithRun {
			resp, err := ctrl.Submit(ctx, language(), code, timeLimit())
			printStatus(ctrl)
			if err != nil {
				return err
			}
			console = render.Transcript(resp)
		}

		res, err := ctrl.Analyze(ctx, code, console)
		printStatus(ctrl)
		if err != nil {
			return err
		}
		fmt.Println(render.Analysis(res))
		if !res.Success {
			return errors.New("analysis failed")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringVarP(&analyzeProblem, "problem", "p", "", "problem id, sent to the analyzer as context")
	analyzeCmd.Flags().BoolVar(&analyzeWithRun, "with-run", false, "evaluate first and send the test transcript along")
	analyzeCmd.Flags().StringVar(&analyzeConsole, "console", "", "file holding console output to send along")
	analyzeCmd.Flags().StringVarP(&submitLanguage, "language", "l", "", "language identifier used with --with-run")
	analyzeCmd.Flags().IntVar(&submitTimeLimit, "time-limit", 0, "per-test time limit in ms used with --with-run")
}
