package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/law-makers/storelens/internal/ui"
)

// checkCmd represents the check command
var checkCmd = &cobra.Command{
	Use:     "check <url>",
	Aliases: []string{"quick-check"},
	Short:   "Check whether a URL is a reachable Shopify store",
	Long: `Fetches only the home page and the products feed. Unreachable stores are
reported, not treated as errors.`,
	Example: `  storelens check allbirds.com`,
	Args:    cobra.ExactArgs(1),
	RunE:    runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	a := mustApp(cmd)

	res, err := a.Analyzer.QuickCheck(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "\n%s  %s\n\n", ui.Heading(res.BrandName), ui.Dim(res.URL))
	fmt.Fprintln(w, ui.Field("Accessible", yesNo(res.Accessible)))
	fmt.Fprintln(w, ui.Field("Shopify store", yesNo(res.IsShopifyStore)))
	fmt.Fprintln(w, ui.Field("Products feed", yesNo(res.HasProductsJSON)))
	fmt.Fprintln(w, ui.Field("Title", res.Title))
	fmt.Fprintln(w)
	return nil
}

func yesNo(b bool) string {
	if b {
		return ui.Success("yes")
	}
	return ui.Error("no")
}
