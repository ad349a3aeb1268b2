package cli

import (
	"github.com/spf13/cobra"

	"github.com/law-makers/storelens/internal/ui"
)

var (
	competitorLimit int
	competitorRaw   bool
)

// competitorsCmd represents the competitors command
var competitorsCmd = &cobra.Command{
	Use:   "competitors <url>",
	Short: "Suggest competing stores",
	Long: `Suggests competitors without fetching anything. Known brands use a curated
list, other domains get suggestions for the industry their name points to.`,
	Example: `  storelens competitors allbirds.com
  storelens competitors mybrand.shop --limit 3`,
	Args: cobra.ExactArgs(1),
	RunE: runCompetitors,
}

func init() {
	rootCmd.AddCommand(competitorsCmd)
	competitorsCmd.Flags().IntVarP(&competitorLimit, "limit", "l", 0, "Maximum suggestions (default from config)")
	competitorsCmd.Flags().BoolVar(&competitorRaw, "raw", false, "Print the suggestions as JSON")
}

func runCompetitors(cmd *cobra.Command, args []string) error {
	a := mustApp(cmd)

	limit := competitorLimit
	if limit <= 0 {
		limit = a.Config.CompetitorLimit
	}
	list, err := a.Analyzer.Competitors(args[0], limit)
	if err != nil {
		return err
	}
	if competitorRaw {
		return printJSON(cmd.OutOrStdout(), list)
	}

	t := ui.NewTable(cmd.OutOrStdout(), "Domain", "Title", "Category", "Confidence", "Source", "Strength", "Position")
	for _, c := range list {
		t.AppendRow([]any{c.Domain, c.Title, c.Category, c.Confidence, c.Source, c.Strength, c.MarketPosition})
	}
	t.Render()
	return nil
}
