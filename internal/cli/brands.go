package cli

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/law-makers/storelens/internal/apperr"
	"github.com/law-makers/storelens/internal/server"
	"github.com/law-makers/storelens/internal/store"
	"github.com/law-makers/storelens/internal/ui"
	"github.com/law-makers/storelens/internal/utils/output"
	"github.com/law-makers/storelens/pkg/models"
)

var (
	brandsSkip   int
	brandsLimit  int
	brandsOutput string
	brandsRaw    bool
)

// brandsCmd groups the commands that read the database
var brandsCmd = &cobra.Command{
	Use:   "brands",
	Short: "List, show and delete saved profiles",
}

var brandsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved profiles, newest first",
	Example: `  storelens brands list
  storelens brands list --skip 20 --limit 20`,
	Args: cobra.NoArgs,
	RunE: runBrandsList,
}

var brandsGetCmd = &cobra.Command{
	Use:   "get <id|url>",
	Short: "Show a saved profile",
	Example: `  storelens brands get 3
  storelens brands get allbirds.com -o allbirds.md`,
	Args: cobra.ExactArgs(1),
	RunE: runBrandsGet,
}

var brandsDeleteCmd = &cobra.Command{
	Use:     "delete <id|url>",
	Aliases: []string{"rm"},
	Short:   "Delete a saved profile",
	Args:    cobra.ExactArgs(1),
	RunE:    runBrandsDelete,
}

var trendingCmd = &cobra.Command{
	Use:   "trending",
	Short: "Show the most used themes and apps among recent profiles",
	Args:  cobra.NoArgs,
	RunE:  runTrending,
}

func init() {
	rootCmd.AddCommand(brandsCmd)
	brandsCmd.AddCommand(brandsListCmd, brandsGetCmd, brandsDeleteCmd, trendingCmd)

	brandsListCmd.Flags().IntVar(&brandsSkip, "skip", 0, "Profiles to skip")
	brandsListCmd.Flags().IntVarP(&brandsLimit, "limit", "l", 100, "Maximum profiles to list")
	brandsGetCmd.Flags().StringVarP(&brandsOutput, "output", "o", "", "Write the profile to a file (.json, .csv, .md, .html)")
	brandsGetCmd.Flags().BoolVar(&brandsRaw, "raw", false, "Print the full profile as JSON")
}

func openStore(cmd *cobra.Command) (*store.Store, error) {
	return mustApp(cmd).Store(cmd.Context())
}

// lookup resolves a numeric id or a store URL to a saved profile.
func lookup(cmd *cobra.Command, s *store.Store, ref string) (*models.StoreProfile, error) {
	if id, err := strconv.ParseInt(ref, 10, 64); err == nil {
		return s.GetByID(cmd.Context(), id)
	}
	return s.Get(cmd.Context(), ref)
}

func runBrandsList(cmd *cobra.Command, args []string) error {
	if brandsSkip < 0 || brandsLimit <= 0 {
		return apperr.Validation("skip must be >= 0 and limit > 0", nil)
	}
	s, err := openStore(cmd)
	if err != nil {
		return err
	}
	brands, err := s.List(cmd.Context(), brandsSkip, brandsLimit)
	if err != nil {
		return err
	}
	if len(brands) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), ui.Info("No saved profiles. Run `storelens analyze <url> --save` first."))
		return nil
	}

	t := ui.NewTable(cmd.OutOrStdout(), "ID", "Brand", "Website", "Theme", "Apps", "Products", "Completeness", "Analyzed")
	for _, b := range brands {
		theme := ""
		if b.Theme != nil {
			theme = *b.Theme
		}
		t.AppendRow([]any{b.ID, b.Name, b.URL, theme, strings.Join(b.Apps, ", "), b.Products,
			ui.Score(b.Score), b.AnalyzedAt.Local().Format("2006-01-02 15:04")})
	}
	t.Render()
	return nil
}

func runBrandsGet(cmd *cobra.Command, args []string) error {
	s, err := openStore(cmd)
	if err != nil {
		return err
	}
	p, err := lookup(cmd, s, args[0])
	if err != nil {
		return err
	}

	if brandsOutput != "" {
		if err := output.Save(p, brandsOutput); err != nil {
			return err
		}
		fmt.Fprintln(os.Stderr, ui.Success("✓ Saved to "+brandsOutput))
		return nil
	}
	if brandsRaw {
		return printJSON(cmd.OutOrStdout(), p)
	}
	fmt.Fprintln(cmd.OutOrStdout(), store.Summary(p))
	return nil
}

func runBrandsDelete(cmd *cobra.Command, args []string) error {
	s, err := openStore(cmd)
	if err != nil {
		return err
	}
	if id, perr := strconv.ParseInt(args[0], 10, 64); perr == nil {
		err = s.DeleteByID(cmd.Context(), id)
	} else {
		err = s.Delete(cmd.Context(), args[0])
	}
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), ui.Success("✓ Deleted "+args[0]))
	return nil
}

func runTrending(cmd *cobra.Command, args []string) error {
	s, err := openStore(cmd)
	if err != nil {
		return err
	}
	tr, err := s.Trending(cmd.Context(), server.TrendingWindow, server.TrendingTop)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "%s %s\n", ui.Bold("Recent analyses:"), strconv.Itoa(tr.Analyzed))
	themes := ui.NewTable(w, "Theme", "Stores")
	for _, u := range tr.Themes {
		themes.AppendRow([]any{u.Name, u.Count})
	}
	themes.Render()
	apps := ui.NewTable(w, "App", "Stores")
	for _, u := range tr.Apps {
		apps.AppendRow([]any{u.Name, u.Count})
	}
	apps.Render()
	return nil
}
