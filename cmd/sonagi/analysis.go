package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/purunsolnp/sonagi-stock/internal/app"
	"github.com/purunsolnp/sonagi-stock/internal/common"
	"github.com/purunsolnp/sonagi-stock/internal/models"
	"github.com/purunsolnp/sonagi-stock/internal/services/parser"
	"github.com/purunsolnp/sonagi-stock/internal/services/prompt"
	"github.com/purunsolnp/sonagi-stock/internal/services/report"
)

// renderFlag selects the glamour style; "plain" prints the markdown as is.
type renderFlag struct {
	style string
}

func (f *renderFlag) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.style, "render", "dark", "markdown style: dark, light, notty or plain")
}

func (f *renderFlag) write(cmd *cobra.Command, md string) error {
	if f.style == "plain" {
		fmt.Fprint(cmd.OutOrStdout(), md)
		return nil
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(f.style),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return fmt.Errorf("failed to create markdown renderer: %w", err)
	}
	out, err := r.Render(md)
	if err != nil {
		return fmt.Errorf("failed to render markdown: %w", err)
	}
	fmt.Fprint(cmd.OutOrStdout(), out)
	return nil
}

func newPromptCmd(opts *rootOptions) *cobra.Command {
	var style string
	var system bool
	cmd := &cobra.Command{
		Use:   "prompt TICKER",
		Short: "Preview the analysis prompt for a catalog instrument",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := opts.loadCatalog()
			if err != nil {
				return err
			}
			inst, ok := cat.Lookup(args[0])
			if !ok {
				return fmt.Errorf("unknown ticker %s", models.NormalizeTicker(args[0]))
			}

			st := prompt.ParseStyle(style)
			var p models.Prompt
			if inst.Kind == models.KindETF {
				var avg *models.ThemeAverage
				if a, ok := cat.ThemeAverage(inst.ETF.Theme); ok {
					avg = &a
				}
				p = prompt.BuildETFPrompt(*inst.ETF, avg, st)
			} else {
				var avg *models.SectorAverage
				if a, ok := cat.SectorAverage(inst.Stock.Sector); ok {
					avg = &a
				}
				p = prompt.BuildStockPrompt(*inst.Stock, avg, st)
			}

			out := cmd.OutOrStdout()
			if system {
				fmt.Fprintf(out, "[system]\n%s\n\n[prompt]\n", p.System)
			}
			fmt.Fprintln(out, p.Text)
			return nil
		},
	}
	cmd.Flags().StringVar(&style, "style", "", "investor style (conservative, growth, dividend, aggressive, balanced)")
	cmd.Flags().BoolVar(&system, "system", false, "include the system instruction")
	return cmd
}

func newParseCmd() *cobra.Command {
	var kind, ticker string
	var rf renderFlag
	cmd := &cobra.Command{
		Use:   "parse FILE",
		Short: "Parse a saved AI response into a report (- reads stdin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var data []byte
			var err error
			if args[0] == "-" {
				data, err = io.ReadAll(cmd.InOrStdin())
			} else {
				data, err = os.ReadFile(args[0])
			}
			if err != nil {
				return fmt.Errorf("failed to read response: %w", err)
			}

			var rep *models.Report
			switch strings.ToLower(kind) {
			case "stock", "etf":
				if ticker == "" {
					return fmt.Errorf("--ticker is required for %s responses", kind)
				}
				rep = parser.ParseInstrument(string(data), models.NormalizeTicker(ticker), models.SubjectType(strings.ToLower(kind)))
			case "portfolio":
				rep = parser.ParsePortfolio(string(data))
			case "cash":
				rep = parser.ParseCash(string(data))
			default:
				return fmt.Errorf("unknown response type %q", kind)
			}
			return rf.write(cmd, report.Markdown(rep))
		},
	}
	cmd.Flags().StringVar(&kind, "type", "stock", "response type: stock, etf, portfolio or cash")
	cmd.Flags().StringVar(&ticker, "ticker", "", "ticker the response describes")
	rf.register(cmd)
	return cmd
}

func newAnalyzeCmd(opts *rootOptions) *cobra.Command {
	var style, user string
	var rf renderFlag
	cmd := &cobra.Command{
		Use:   "analyze TICKER",
		Short: "Run an AI analysis and store the report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if f := cmd.Flag("log-level"); f != nil && f.Changed {
				os.Setenv("SONAGI_LOG_LEVEL", opts.logLevel)
			}
			if opts.catalogPath != "" {
				os.Setenv("SONAGI_CATALOG_PATH", opts.catalogPath)
			}
			a, err := app.NewApp(opts.configPath)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := common.WithUserContext(cmd.Context(), &common.UserContext{UserID: user})
			rep, err := a.AnalysisService.AnalyzeInstrument(ctx, args[0], style)
			if err != nil {
				return err
			}
			if err := rf.write(cmd, report.Markdown(rep)); err != nil {
				return err
			}

			st, err := a.QuotaService.Load(ctx)
			if err == nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "quota: %d/%d used this month\n", st.Usage, st.Limit)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&style, "style", "", "investor style")
	cmd.Flags().StringVar(&user, "user", "default", "user the analysis is charged to")
	rf.register(cmd)
	return cmd
}

func newReportCmd(opts *rootOptions) *cobra.Command {
	var user string
	var rf renderFlag
	cmd := &cobra.Command{
		Use:   "report (stock|etf) TICKER | report portfolio",
		Short: "Show the latest saved report",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := app.NewApp(opts.configPath)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := common.WithUserContext(cmd.Context(), &common.UserContext{UserID: user})
			var rep *models.Report
			switch t := models.SubjectType(strings.ToLower(args[0])); t {
			case models.SubjectPortfolio:
				rep, err = a.ReportService.GetPortfolioReport(ctx)
			case models.SubjectStock, models.SubjectETF:
				if len(args) != 2 {
					return fmt.Errorf("a ticker is required for %s reports", t)
				}
				rep, err = a.ReportService.GetReport(ctx, t, args[1])
			default:
				return fmt.Errorf("unknown report type %q", args[0])
			}
			if err != nil {
				return err
			}
			return rf.write(cmd, report.Markdown(rep))
		},
	}
	cmd.Flags().StringVar(&user, "user", "default", "user whose reports to read")
	rf.register(cmd)
	return cmd
}
