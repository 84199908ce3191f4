package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kvesta/lem/config"
	"github.com/kvesta/lem/internal"
	"github.com/kvesta/lem/internal/report"
	"github.com/kvesta/lem/pkg/score"
)

func scoreCommands() {
	var example string

	scoreCmd := &cobra.Command{
		Use:   "score",
		Short: "Manage score dimensions and score exploits",
		Long: `Examples:
  # Define a dimension
  $ lem score define severity '[LMH]' --example H

  # Score an exploit on the running host
  $ lem score set --edbid 40611 severity=H

  # Score an exploit on another platform
  $ lem score set --edbid 40611 --cve CVE-2016-5195 --cpe cpe:/o:redhat:enterprise_linux:7 severity=M`,
		Args: NoArgs,
	}

	defineCmd := &cobra.Command{
		Use:   "define NAME PATTERN",
		Short: "Define a score dimension",
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			a := openApp()
			defer a.Close()

			if err := a.Scores.Define(score.Definition{Name: args[0], Pattern: args[1], Example: example}); err != nil {
				fatal(a, err)
			}
			fmt.Fprintln(a.Out, config.Green(fmt.Sprintf("score %s defined", args[0])))
		},
	}
	defineCmd.Flags().StringVar(&example, "example", "", "example value, validated against the pattern")

	updateCmd := &cobra.Command{
		Use:   "update NAME PATTERN",
		Short: "Change the pattern of a score dimension",
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			a := openApp()
			defer a.Close()

			if err := a.Scores.Update(score.Definition{Name: args[0], Pattern: args[1], Example: example}); err != nil {
				fatal(a, err)
			}
			fmt.Fprintln(a.Out, config.Green(fmt.Sprintf("score %s updated", args[0])))
		},
	}
	updateCmd.Flags().StringVar(&example, "example", "", "example value, validated against the pattern")

	removeCmd := &cobra.Command{
		Use:   "remove NAME",
		Short: "Remove a score dimension",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			a := openApp()
			defer a.Close()

			if err := a.Scores.Remove(args[0]); err != nil {
				fatal(a, err)
			}
		},
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List score dimensions",
		Args:  NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			a := openApp()
			defer a.Close()

			defs, err := a.Scores.List()
			if err != nil {
				fatal(a, err)
			}
			report.ResolveScores(a.Out, defs)
		},
	}

	setCmd := &cobra.Command{
		Use:   "set DIMENSION=VALUE...",
		Short: "Score an exploit",
		Args:  cobra.MinimumNArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return requireEdbid(cmd)
		},
		Run: func(cmd *cobra.Command, args []string) {
			a := openApp()
			defer a.Close()

			values, err := internal.ParseScoreValues(args)
			if err != nil {
				fatal(a, err)
			}

			if err := internal.DoScore(context.Background(), a, target(), values); err != nil {
				fatal(a, err)
			}
			fmt.Fprintln(a.Out, config.Green(fmt.Sprintf("exploit %s scored", edbid)))
		},
	}
	targetFlags(setCmd)

	scoreCmd.AddCommand(defineCmd, updateCmd, removeCmd, listCmd, setCmd)
	rootCmd.AddCommand(scoreCmd)
}

func targetFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&edbid, "edbid", "", "exploit database id")
	cmd.Flags().StringVar(&cveID, "cve", "", "CVE of the exploit, all of them when empty")
	cmd.Flags().StringVar(&cpe, "cpe", "", "platform CPE or package identity, the running host when empty")
}
