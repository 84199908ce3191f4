package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/kvesta/lem/internal"
	"github.com/kvesta/lem/internal/report"
)

func stageCommands() {
	stageCmd := &cobra.Command{
		Use:   "stage",
		Short: "Record staging data and stage exploit payloads",
		Long: `Examples:
  # Record how to build an exploit on the running host
  $ lem stage command --edbid 40611 -- gcc -pthread 40611.c -o dirtycow
  $ lem stage packages --edbid 40611 gcc glibc-devel
  $ lem stage selinux --edbid 40611 permissive

  # Show the staging data
  $ lem stage show --edbid 40611

  # Copy the payload to a directory
  $ lem stage run --edbid 40611 /tmp/stage`,
		Args: NoArgs,
	}

	setter := func(use, short string, field internal.StageField) *cobra.Command {
		cmd := &cobra.Command{
			Use:   use,
			Short: short,
			Args:  cobra.MinimumNArgs(1),
			PreRunE: func(cmd *cobra.Command, args []string) error {
				return requireEdbid(cmd)
			},
			Run: func(cmd *cobra.Command, args []string) {
				a := openApp()
				defer a.Close()

				if err := internal.DoSetStaging(context.Background(), a, target(), field, args); err != nil {
					fatal(a, err)
				}
			},
		}
		targetFlags(cmd)
		return cmd
	}

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Show the staging data of an exploit",
		Args:  NoArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return requireEdbid(cmd)
		},
		Run: func(cmd *cobra.Command, args []string) {
			a := openApp()
			defer a.Close()

			info, cve, resolved, err := internal.DoShowStaging(context.Background(), a, edbid, cpe)
			if err != nil {
				fatal(a, err)
			}
			report.ResolveStaging(a.Out, edbid, cve, resolved, info)
		},
	}
	targetFlags(showCmd)

	runCmd := &cobra.Command{
		Use:   "run DESTINATION",
		Short: "Copy the payload of an exploit and show its staging data",
		Args:  cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return requireEdbid(cmd)
		},
		Run: func(cmd *cobra.Command, args []string) {
			a := openApp()
			defer a.Close()

			result, err := internal.DoStage(context.Background(), a, edbid, args[0], cpe)
			if result != nil {
				report.ResolveStageResult(a.Out, result)
			}
			if err != nil {
				fatal(a, err)
			}
		},
	}
	targetFlags(runCmd)

	stageCmd.AddCommand(
		setter("command -- COMMAND...", "Set the command building the exploit", internal.StageCommand),
		setter("packages PACKAGE...", "Add packages required by the exploit", internal.StagePackages),
		setter("services SERVICE...", "Add services required by the exploit", internal.StageServices),
		setter("selinux MODE", "Set the SELinux mode required by the exploit", internal.StageSelinux),
		showCmd,
		runCmd,
	)
	rootCmd.AddCommand(stageCmd)
}
