package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/kvesta/lem/internal"
	"github.com/kvesta/lem/internal/report"
)

func refresh() *cobra.Command {
	var (
		opts    internal.RefreshOptions
		outfile string
	)

	refreshCmd := &cobra.Command{
		Use:   "refresh",
		Short: "Sync the exploit database and reconcile the curation store",
		Long: `Examples:
  # Sync the exploit database and reconcile with the cached CVE list
  $ lem refresh

  # Query the security API as well
  $ lem refresh --api

  # Query the security API even if the cache is fresh
  $ lem refresh --api --force`,
		Args: NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			a := openApp()
			defer a.Close()

			summary, err := internal.DoRefresh(context.Background(), a, opts)
			if err != nil {
				if summary == nil {
					fatal(a, err)
				}
				// Failed exploits were already logged, the others are reconciled.
				a.Logger.Printf("%d exploits could not be reconciled", summary.Failed)
			}

			if outfile != "" {
				if _, err := report.ToJson(outfile, summary); err != nil {
					fatal(a, err)
				}
			}
		},
	}

	refreshCmd.Flags().BoolVar(&opts.API, "api", false, "query the security API")
	refreshCmd.Flags().BoolVar(&opts.Force, "force", false, "ignore the security API cache expiry")
	refreshCmd.Flags().BoolVar(&opts.Offline, "offline", false, "do not sync the git repositories")
	refreshCmd.Flags().StringVarP(&outfile, "output", "o", "", "save the summary as json")

	rootCmd.AddCommand(refreshCmd)
	return refreshCmd
}

func list() *cobra.Command {
	var (
		asJson  bool
		outfile string
	)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List curated exploits",
		Long: `Examples:
  # List every curated exploit
  $ lem list

  # List one exploit
  $ lem list --edbid 40611

  # List the exploits of a CVE
  $ lem list --cve CVE-2016-5195`,
		Args: NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			a := openApp()
			defer a.Close()

			exploits, err := internal.DoList(a, edbid, cveID)
			if err != nil {
				fatal(a, err)
			}

			report.ResolveExploits(a.Out, exploits)

			if asJson {
				if _, err := report.ToJson(outfile, exploits); err != nil {
					fatal(a, err)
				}
			}
		},
	}

	listCmd.Flags().StringVar(&edbid, "edbid", "", "exploit database id")
	listCmd.Flags().StringVar(&cveID, "cve", "", "CVE identifier")
	listCmd.Flags().BoolVar(&asJson, "json", false, "save the listing as json")
	listCmd.Flags().StringVarP(&outfile, "output", "o", "output", "output file location")

	rootCmd.AddCommand(listCmd)
	return listCmd
}
