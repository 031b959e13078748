/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/codecoach/client/internal/problemform"
	"github.com/codecoach/client/internal/render"
	"github.com/codecoach/client/types"
	"github.com/spf13/cobra"
)

var (
	listDifficulty string
	listTag        string

	formFile  string
	formTests string
)

// problemsCmd represents the problems command
var problemsCmd = &cobra.Command{
	Use:     "problems",
	Aliases: []string{"p"},
	Short:   "Browse and manage the problem catalog",
}

var problemsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List problems, optionally filtered by difficulty or tag",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if listDifficulty != "" && listTag != "" {
			return errors.New("--difficulty and --tag cannot be combined")
		}
		ctx := cmd.Context()
		ctrl, closeFn, err := session(ctx)
		if err != nil {
			return err
		}
		defer closeFn()

		switch {
		case listDifficulty != "":
			err = ctrl.FilterByDifficulty(ctx, types.Difficulty(listDifficulty))
		case listTag != "":
			err = ctrl.FilterByTag(ctx, listTag)
		default:
			err = ctrl.LoadAll(ctx)
		}
		printStatus(ctrl)
		if err != nil {
			return err
		}
		fmt.Println(render.ProblemList(ctrl.Snapshot().Problems))
		return nil
	},
}

var problemsGetCmd = &cobra.Command{
	Use:   "get <problem-id>",
	Short: "Show a problem with its description and code stub",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		ctrl, closeFn, err := session(ctx)
		if err != nil {
			return err
		}
		defer closeFn()

		p, err := ctrl.Select(ctx, args[0])
		if err != nil {
			printStatus(ctrl)
			return err
		}
		fmt.Println(render.ProblemDetail(p))
		return nil
	},
}

var problemsRandomCmd = &cobra.Command{
	Use:   "random",
	Short: "Pick a random problem",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		ctrl, closeFn, err := session(ctx)
		if err != nil {
			return err
		}
		defer closeFn()

		if err := ctrl.PickRandom(ctx); err != nil {
			printStatus(ctrl)
			return err
		}
		fmt.Println(render.ProblemDetail(*ctrl.Snapshot().Selected))
		return nil
	},
}

var problemsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a problem from a JSON or TOML manifest",
	Long: `Create a problem from a JSON or TOML manifest. Test cases listed in the
manifest are extended with the ones in --tests, a tar archive (optionally
gzip or zstd compressed) holding 1.in, 1.out, 2.in, 2.out, ...`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		form, err := loadForm()
		if err != nil {
			return err
		}
		resp, err := problemsClient().Create(cmd.Context(), form.Problem)
		if err != nil {
			return fmt.Errorf("create %s: %w", form.Problem.ProblemID, err)
		}
		fmt.Println(ack(resp, "created", form.Problem.ProblemID))
		return nil
	},
}

var problemsUpdateCmd = &cobra.Command{
	Use:   "update [problem-id]",
	Short: "Replace a problem from a manifest; the id defaults to the manifest's",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		form, err := loadForm()
		if err != nil {
			return err
		}
		id := form.Problem.ProblemID
		if len(args) == 1 {
			id = args[0]
		}
		resp, err := problemsClient().Update(cmd.Context(), id, form.Problem)
		if err != nil {
			return fmt.Errorf("update %s: %w", id, err)
		}
		fmt.Println(ack(resp, "updated", id))
		return nil
	},
}

var problemsDeleteCmd = &cobra.Command{
	Use:   "delete <problem-id>",
	Short: "Delete a problem",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := problemsClient().Delete(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("delete %s: %w", args[0], err)
		}
		fmt.Println(ack(resp, "deleted", args[0]))
		return nil
	},
}

func loadForm() (problemform.Form, error) {
	if formFile == "" {
		return problemform.Form{}, errors.New("--file is required")
	}
	form, err := problemform.Load(formFile, formTests)
	if err != nil {
		return problemform.Form{}, err
	}
	for _, w := range form.Warnings {
		fmt.Fprintln(os.Stderr, "warning:", w)
	}
	return form, nil
}

func ack(resp types.MessageResponse, verb, id string) string {
	if resp.Message != "" {
		return resp.Message
	}
	return fmt.Sprintf("Problem '%s' %s", id, verb)
}

func init() {
	rootCmd.AddCommand(problemsCmd)
	problemsCmd.AddCommand(problemsListCmd, problemsGetCmd, problemsRandomCmd,
		problemsCreateCmd, problemsUpdateCmd, problemsDeleteCmd)

	problemsListCmd.Flags().StringVarP(&listDifficulty, "difficulty", "d", "", "only problems of this difficulty (Easy, Medium, Hard)")
	problemsListCmd.Flags().StringVarP(&listTag, "tag", "t", "", "only problems carrying this tag")

	for _, c := range []*cobra.Command{problemsCreateCmd, problemsUpdateCmd} {
		c.Flags().StringVarP(&formFile, "file", "f", "", "problem manifest (.json or .toml)")
		c.Flags().StringVar(&formTests, "tests", "", "test case bundle (.tar, .tar.gz or .tar.zst)")
	}
}
