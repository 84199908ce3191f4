package cli

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kvesta/lem/internal"
	"github.com/kvesta/lem/internal/report"
)

func assess() *cobra.Command {
	var (
		kind    string
		asJson  bool
		asCSV   bool
		outfile string
	)

	assessCmd := &cobra.Command{
		Use:   "assess",
		Short: "Assess the host and report the applicable exploits",
		Long: `Examples:
  # Assess with the assessor suited to the distribution
  $ lem assess

  # Assess with a specific assessor
  $ lem assess --kind rpm

  # Save the findings
  $ lem assess --json -o findings.json
  $ lem assess --csv -o findings.csv

  # Save both, as findings.json and findings.csv
  $ lem assess --json --csv -o findings`,
		Args: NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			a := openApp()
			defer a.Close()

			if kind == "" {
				kind = a.Cfg.Assessor.Kind
			}

			result, err := internal.DoAssess(context.Background(), a, kind)
			if err != nil {
				fatal(a, err)
			}

			report.ResolveAssessment(a.Out, result)

			jsonOut, csvOut := assessOutputs(outfile, asJson, asCSV)
			if asJson {
				if _, err := report.ToJson(jsonOut, result); err != nil {
					fatal(a, err)
				}
			}
			if asCSV {
				if _, err := report.FindingsToCSV(csvOut, result.Findings); err != nil {
					fatal(a, err)
				}
			}
		},
	}

	assessCmd.Flags().StringVarP(&kind, "kind", "k", "", "assessor: auto, yum, rpm or pacman")
	assessCmd.Flags().BoolVar(&asJson, "json", false, "save the findings as json")
	assessCmd.Flags().BoolVar(&asCSV, "csv", false, "save the findings as csv")
	assessCmd.Flags().StringVarP(&outfile, "output", "o", "output", "output file location")

	rootCmd.AddCommand(assessCmd)
	return assessCmd
}

// assessOutputs returns the json and csv file names. When both formats go
// to one custom location the extension is replaced for each of them.
func assessOutputs(outfile string, asJson, asCSV bool) (string, string) {
	if outfile == "output" || !(asJson && asCSV) {
		return outfile, outfile
	}

	base := strings.TrimSuffix(outfile, filepath.Ext(outfile))
	return base + ".json", base + ".csv"
}
