package cli

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/law-makers/storelens/internal/ui"
	"github.com/law-makers/storelens/internal/utils/output"
)

var (
	analyzeSave   bool
	analyzeOutput string
	analyzeRaw    bool
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze <url>",
	Short: "Build a full brand profile for one store",
	Long: `Fetches the home page, the products feed and the common policy, FAQ, about
and contact pages of a store and extracts a brand profile from them.

Sections with a minimum count (featured products, FAQs) are padded with
generated entries when the store does not publish enough of them. Generated
entries are marked in every export.`,
	Example: `  # Print a summary
  storelens analyze allbirds.com

  # Save the profile to the local database
  storelens analyze https://allbirds.com --save

  # Export to a file (json, csv, md or html)
  storelens analyze allbirds.com -o allbirds.html`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().BoolVarP(&analyzeSave, "save", "s", false, "Save the profile to the database")
	analyzeCmd.Flags().StringVarP(&analyzeOutput, "output", "o", "", "Write the profile to a file (.json, .csv, .md, .html)")
	analyzeCmd.Flags().BoolVar(&analyzeRaw, "raw", false, "Print the full profile as JSON instead of a summary")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	a := mustApp(cmd)
	ctx := cmd.Context()

	log.Info().Str("url", args[0]).Msg("Analyzing store")
	profile, err := a.Analyzer.Analyze(ctx, args[0])
	if err != nil {
		return err
	}

	if analyzeSave {
		s, err := a.Store(ctx)
		if err != nil {
			return err
		}
		id, err := s.Save(ctx, profile)
		if err != nil {
			return err
		}
		log.Info().Int64("brand_id", id).Msg("Profile saved")
	}

	if analyzeOutput != "" {
		if err := output.Save(profile, analyzeOutput); err != nil {
			return err
		}
		fmt.Fprintln(os.Stderr, ui.Success("✓ Saved to "+analyzeOutput))
	}

	if analyzeRaw {
		return printJSON(cmd.OutOrStdout(), profile)
	}
	printProfile(cmd.OutOrStdout(), profile)
	return nil
}
