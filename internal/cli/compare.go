package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/law-makers/storelens/internal/analyze"
	"github.com/law-makers/storelens/internal/ui"
)

var compareRaw bool

// compareCmd represents the compare command
var compareCmd = &cobra.Command{
	Use:   "compare <url> <url> [url...]",
	Short: "Compare stores side by side",
	Long: `Analyzes 2 or more stores concurrently and lines them up. The upper
limit comes from compare_max_urls in the config (10 by default).`,
	Example: `  storelens compare allbirds.com gymshark.com
  storelens compare allbirds.com gymshark.com bombas.com --raw`,
	Args: cobra.MinimumNArgs(analyze.MinCompareURLs),
	RunE: runCompare,
}

func init() {
	rootCmd.AddCommand(compareCmd)
	compareCmd.Flags().BoolVar(&compareRaw, "raw", false, "Print the comparison as JSON")
}

func runCompare(cmd *cobra.Command, args []string) error {
	a := mustApp(cmd)

	res, err := a.Analyzer.Compare(cmd.Context(), args)
	if err != nil {
		return err
	}
	if compareRaw {
		return printJSON(cmd.OutOrStdout(), res)
	}

	w := cmd.OutOrStdout()
	t := ui.NewTable(w, "Store", "Brand", "Products", "Hero", "Policies", "FAQs", "Social", "Links", "Contact", "Theme", "Apps", "Completeness")
	for _, s := range res.Stores {
		if s.Error != "" {
			t.AppendRow([]any{s.URL, ui.Error("✗ " + s.Error)})
			continue
		}
		contact := "no"
		if s.HasContact {
			contact = "yes"
		}
		t.AppendRow([]any{s.URL, s.Name, s.Products, s.HeroProducts, s.Policies, s.FAQs,
			s.SocialHandles, s.ImportantLinks, contact, s.Theme, s.Apps, ui.Score(s.Score)})
	}
	t.Render()

	if len(res.Leaders) > 0 {
		metrics := make([]string, 0, len(res.Leaders))
		for m := range res.Leaders {
			metrics = append(metrics, m)
		}
		sort.Strings(metrics)
		fmt.Fprintln(w, ui.Bold("Leaders"))
		for _, m := range metrics {
			fmt.Fprintln(w, ui.Field(m, res.Leaders[m]))
		}
	}
	return nil
}
