package config

import "github.com/spf13/cobra"

// RegisterFlags registers common CLI flags on the provided root command
func RegisterFlags(cmd *cobra.Command) {
	if cmd == nil {
		return
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")
	cmd.PersistentFlags().BoolP("quiet", "q", false, "Suppress all output except errors")
	cmd.PersistentFlags().Bool("json", false, "Log in JSON format")
	cmd.PersistentFlags().String("proxy", "", "Comma-separated HTTP/SOCKS5 proxies to rotate through")
	cmd.PersistentFlags().String("timeout", DefaultHTTPTimeout.String(), "Per-request timeout")
	cmd.PersistentFlags().Int("retries", DefaultMaxRetries, "Retries per URL after the first attempt")
	cmd.PersistentFlags().String("retry-delay", DefaultRetryDelay.String(), "Base delay between retries (grows linearly)")
	cmd.PersistentFlags().String("user-agent", "", "Custom user agent string")
	cmd.PersistentFlags().String("db", "", "Path to the SQLite database (default "+DefaultDatabasePath+")")
	cmd.PersistentFlags().Bool("render", false, "Render the home page in headless Chrome before extraction")
	cmd.PersistentFlags().String("config", "", "Path to a YAML configuration file (optional)")
}
