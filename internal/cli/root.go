// internal/cli/root.go
package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/law-makers/storelens/internal/app"
	"github.com/law-makers/storelens/internal/config"
	headersutil "github.com/law-makers/storelens/internal/utils/headers"
)

var headers []string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "storelens",
	Short: "Analyze e-commerce storefronts from the command line",
	Long: `Storelens fetches the public pages of a Shopify-style storefront and turns them
into a structured brand profile: products, featured items, policies, FAQs,
social handles, contact details, navigation links, theme, apps and suggested
competitors.

Profiles can be saved to a local SQLite database, exported to JSON, CSV,
Markdown or HTML, and served over an HTTP API.`,
	Version:       "0.1.0",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command with ctx, which should be cancelled on
// interrupt. It exits the process with status 1 on error.
func Execute(ctx context.Context) {
	cmd, err := rootCmd.ExecuteContextC(ctx)
	if a := appFrom(cmd); a != nil {
		closeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if cerr := a.Close(closeCtx); cerr != nil && err == nil {
			err = cerr
		}
		cancel()
	}
	if err != nil {
		log.Debug().Err(err).Msg("Command failed")
		fmt.Fprintln(os.Stderr, errorLine(err))
		os.Exit(1)
	}
}

func init() {
	config.RegisterFlags(rootCmd)
	rootCmd.PersistentFlags().StringArrayVarP(&headers, "header", "H", nil, `Extra request header for storefront requests ("Key: Value", repeatable)`)

	rootCmd.Flags().BoolP("help", "h", false, "Help for storelens")
	rootCmd.Flags().Bool("version", false, "Version for storelens")

	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.SetHelpFunc(customHelpFunc)
	rootCmd.SetUsageFunc(customUsageFunc)

	// Build the application lazily so -h and --version never touch config.
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if appFrom(cmd) != nil {
			return nil
		}

		cfg, err := config.Load(rootCmd)
		if err != nil {
			return err
		}
		hdr, err := headersutil.Parse(headers)
		if err != nil {
			return err
		}

		a, err := app.New(cmd.Context(), cfg, app.Options{Headers: hdr})
		if err != nil {
			return err
		}
		setApp(cmd, a)
		log.Debug().Str("user_agent", cfg.UserAgent).Str("command", cmd.Name()).Msg("Configuration loaded")
		return nil
	}
}
