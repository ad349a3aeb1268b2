package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/law-makers/storelens/internal/analyze"
	"github.com/law-makers/storelens/internal/ui"
)

var (
	bulkConcurrency int
	bulkSave        bool
	bulkFile        string
	bulkRaw         bool
)

// bulkCmd represents the bulk command
var bulkCmd = &cobra.Command{
	Use:   "bulk [url...]",
	Short: "Analyze many stores concurrently",
	Long: `Analyzes up to 50 stores with a bounded number of analyses in flight. A
store that fails is reported and never stops the others.`,
	Example: `  # Analyze three stores, two at a time
  storelens bulk allbirds.com gymshark.com bombas.com --concurrency 2

  # Read URLs from a file (one per line, # starts a comment) and save them
  storelens bulk --file stores.txt --save`,
	RunE: runBulk,
}

func init() {
	rootCmd.AddCommand(bulkCmd)

	bulkCmd.Flags().IntVarP(&bulkConcurrency, "concurrency", "c", analyze.DefaultBulkConcurrency, "Stores analyzed at the same time")
	bulkCmd.Flags().BoolVarP(&bulkSave, "save", "s", false, "Save successful profiles to the database")
	bulkCmd.Flags().StringVarP(&bulkFile, "file", "f", "", "Read URLs from a file, one per line")
	bulkCmd.Flags().BoolVar(&bulkRaw, "raw", false, "Print the full result as JSON")
}

func runBulk(cmd *cobra.Command, args []string) error {
	a := mustApp(cmd)
	ctx := cmd.Context()

	urls := append([]string{}, args...)
	if bulkFile != "" {
		fromFile, err := readURLFile(bulkFile)
		if err != nil {
			return err
		}
		urls = append(urls, fromFile...)
	}

	concurrency := bulkConcurrency
	if limit := a.Config.BulkConcurrency; limit > 0 && concurrency > limit {
		concurrency = limit
	}

	bar := progressbar.NewOptions(len(urls),
		progressbar.OptionSetDescription("Analyzing"),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetVisibility(zerolog.GlobalLevel() <= zerolog.InfoLevel && !bulkRaw),
	)
	res, err := a.Analyzer.Bulk(ctx, urls, concurrency, func(analyze.BulkItem) {
		_ = bar.Add(1)
	})
	_ = bar.Finish()
	if err != nil {
		return err
	}

	if bulkSave {
		s, err := a.Store(ctx)
		if err != nil {
			return err
		}
		for _, it := range res.Results {
			if it.Profile == nil {
				continue
			}
			if _, err := s.Save(ctx, it.Profile); err != nil {
				log.Error().Err(err).Str("url", it.URL).Msg("Failed to save profile")
			}
		}
	}

	if bulkRaw {
		return printJSON(cmd.OutOrStdout(), res)
	}

	w := cmd.OutOrStdout()
	t := ui.NewTable(w, "Store", "Brand", "Products", "Completeness", "Status")
	for _, it := range res.Results {
		if it.Profile == nil {
			t.AppendRow([]any{it.URL, "", "", "", ui.Error("✗ " + it.Error)})
			continue
		}
		p := it.Profile
		t.AppendRow([]any{p.URL, p.Name, len(p.Products), ui.Score(p.Completeness.Score), ui.Success("✓")})
	}
	t.Render()
	fmt.Fprintf(w, "%d of %d stores analyzed in %s, average completeness %s\n",
		res.Successful, res.TotalStores, res.Duration, ui.Score(res.AverageScore))
	return nil
}

// readURLFile returns the non-blank, non-comment lines of path.
func readURLFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open url list: %w", err)
	}
	defer f.Close()

	var urls []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read url list: %w", err)
	}
	return urls, nil
}
