// Command sonagi is the terminal front end: catalog screening, prompt
// previews, response parsing and one-off analyses.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/purunsolnp/sonagi-stock/internal/catalog"
	"github.com/purunsolnp/sonagi-stock/internal/common"
)

type rootOptions struct {
	configPath  string
	catalogPath string
	logLevel    string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "sonagi",
		Short:         "Stock and ETF screening with AI analysis reports",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", os.Getenv("SONAGI_CONFIG"), "path to sonagi.toml")
	root.PersistentFlags().StringVar(&opts.catalogPath, "catalog", "", "catalog YAML file (default: embedded seed)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "log level")

	root.AddCommand(
		newFilterCmd(opts),
		newPresetsCmd(),
		newPromptCmd(opts),
		newParseCmd(),
		newAnalyzeCmd(opts),
		newReportCmd(opts),
		newVersionCmd(),
	)
	return root
}

func (o *rootOptions) loadCatalog() (*catalog.Catalog, error) {
	if o.catalogPath == "" {
		return catalog.Default(), nil
	}
	return catalog.Load(o.catalogPath)
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "sonagi", common.GetFullVersion())
		},
	}
}
