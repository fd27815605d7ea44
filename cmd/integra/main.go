// Integra queries a Satel INTEGRA alarm panel through its ETHM-1 module.
//
// Usage:
//
//	integra --host 192.168.1.112 [command] [flags]
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	integra "github.com/caarlos0/homekit-integra"
	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
)

var (
	host         string
	port         string
	debug        bool
	sendInterval time.Duration
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "integra",
	Short: "Query a Satel INTEGRA alarm panel",
	Long: `Query a Satel INTEGRA alarm panel through its ETHM-1 module.

The integration protocol must be enabled in the module settings. Commands are
spaced by at least one second, so commands that read many objects take a while.`,
	Version:       fmt.Sprintf("%s (commit: %s)", version, commit),
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().StringVar(&host, "host", "", "ETHM-1 module address")
	rootCmd.PersistentFlags().StringVar(&port, "port", integra.DefaultPort, "ETHM-1 integration port")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Log every frame sent and received")
	rootCmd.PersistentFlags().DurationVar(&sendInterval, "send-interval", time.Second, "Minimum time between commands")
	_ = rootCmd.MarkPersistentFlagRequired("host")
}

func newClient() (*integra.Client, error) {
	return integra.New(
		host,
		port,
		integra.WithLogger(integra.NewLogger(os.Stderr, true, debug)),
		integra.WithSendInterval(sendInterval),
	)
}
