package cli

import (
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/kvesta/lem/config"
	"github.com/kvesta/lem/internal"
	"github.com/kvesta/lem/internal/vulnscan"
	"github.com/kvesta/lem/pkg/curation"
)

var (
	rootCmd = &cobra.Command{
		Use:   "lem [OPTIONS]",
		Short: "Linux exploit mapper",
		Long: `Lem maps the CVEs affecting a Linux host to curated public exploits,
and keeps per-platform scores and staging data for each exploit.`,
		SilenceUsage: true,
	}

	configFile string
	edbid      string
	cveID      string
	cpe        string
)

func Execute() error {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (default ~/.lem/config.yaml)")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information and quit",
		Args:  NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(versions)
		},
	}

	refresh()
	list()
	assess()
	scoreCommands()
	stageCommands()

	rootCmd.AddCommand(versionCmd)
	return rootCmd.Execute()
}

// openApp loads the configuration and opens the local state, exiting on
// failure.
func openApp() *internal.App {
	cfg, err := config.Load(configFile)
	if err != nil {
		log.Printf(config.Red("failed to load config: %v"), err)
		os.Exit(1)
	}

	a, err := internal.Open(cfg)
	if err != nil {
		log.Printf(config.Red("%v"), err)
		os.Exit(1)
	}

	return a
}

// fatal prints err with a hint for the conditions an operator can fix and
// exits with status 1.
func fatal(a *internal.App, err error) {
	var toolErr *vulnscan.ExternalToolError

	switch {
	case errors.Is(err, vulnscan.ErrAuditHelperMissing):
		log.Printf(config.Red("arch-audit is not installed, install it with 'pacman -S arch-audit' and retry"))
	case errors.As(err, &toolErr) && toolErr.Missing:
		log.Printf(config.Red("%s is not available on this host, choose another assessor with --kind"), toolErr.Tool)
	default:
		log.Printf(config.Red("%v"), err)
	}

	if a != nil {
		a.Close()
	}
	os.Exit(1)
}

func target() curation.Target {
	return curation.Target{ExploitID: edbid, CVE: cveID, CPE: cpe}
}

func requireEdbid(cmd *cobra.Command) error {
	if edbid == "" {
		return fmt.Errorf("%s requires --edbid", cmd.CommandPath())
	}
	return nil
}
