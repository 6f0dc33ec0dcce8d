package main

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/purunsolnp/sonagi-stock/internal/models"
	"github.com/purunsolnp/sonagi-stock/internal/render"
	"github.com/purunsolnp/sonagi-stock/internal/services/filter"
)

// boundFlag maps a CLI flag onto the query key the filter package reads.
type boundFlag struct {
	flag, key, usage string
}

var stockFlags = []boundFlag{
	{"sector", "sector", "sector name"},
	{"per-min", "per_min", "minimum PER"},
	{"per-max", "per_max", "maximum PER"},
	{"roe-min", "roe_min", "minimum ROE %"},
	{"roe-max", "roe_max", "maximum ROE %"},
	{"cap-min", "market_cap_min", "minimum market cap (USD bn)"},
	{"cap-max", "market_cap_max", "maximum market cap (USD bn)"},
	{"div-min", "dividend_min", "minimum dividend yield %"},
	{"div-max", "dividend_max", "maximum dividend yield %"},
}

var etfFlags = []boundFlag{
	{"theme", "theme", "ETF theme"},
	{"div-min", "dividend_min", "minimum dividend yield %"},
	{"div-max", "dividend_max", "maximum dividend yield %"},
	{"expense-min", "expense_min", "minimum expense ratio %"},
	{"expense-max", "expense_max", "maximum expense ratio %"},
	{"aum-min", "aum_min", "minimum AUM (USD m)"},
	{"aum-max", "aum_max", "maximum AUM (USD m)"},
}

func registerBounds(fs *pflag.FlagSet, flags []boundFlag) map[string]*string {
	values := make(map[string]*string, len(flags))
	for _, f := range flags {
		values[f.key] = fs.String(f.flag, "", f.usage)
	}
	return values
}

func toQuery(values map[string]*string) url.Values {
	q := url.Values{}
	for key, v := range values {
		if *v != "" {
			q.Set(key, *v)
		}
	}
	return q
}

func newFilterCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "filter",
		Short: "Screen the catalog by ranges or a preset",
	}
	cmd.AddCommand(newFilterStocksCmd(opts), newFilterETFsCmd(opts))
	return cmd
}

func newFilterStocksCmd(opts *rootOptions) *cobra.Command {
	var preset string
	var markdown bool
	var selected []string
	cmd := &cobra.Command{
		Use:   "stocks",
		Short: "List stocks matching the criteria",
		Args:  cobra.NoArgs,
	}
	values := registerBounds(cmd.Flags(), stockFlags)
	cmd.Flags().StringVar(&preset, "preset", "", "named preset (replaces range flags)")
	cmd.Flags().BoolVar(&markdown, "markdown", false, "print a markdown table")
	cmd.Flags().StringSliceVar(&selected, "select", nil, "tickers to select from the result and compare")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		cat, err := opts.loadCatalog()
		if err != nil {
			return err
		}
		session := filter.NewSession(cat.Stocks(), filter.StockPresets())
		if preset != "" {
			if _, err := session.ApplyPreset(preset); err != nil {
				return err
			}
		} else {
			session.Apply(filter.StockCriteriaFromQuery(toQuery(values)))
		}
		if len(selected) > 0 {
			return writeSelection(cmd, session, selected, markdown)
		}
		stocks := session.Result()
		if len(stocks) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No stocks match the criteria.")
			return nil
		}
		writeTable(cmd, render.StockTable(stocks), markdown)
		return nil
	}
	return cmd
}

// writeSelection selects tickers from the filtered result, reports the ones
// the filter hides, and prints the comparison of the rest.
func writeSelection(cmd *cobra.Command, session *filter.Session[models.Stock, models.StockCriteria], tickers []string, markdown bool) error {
	out := cmd.OutOrStdout()
	ids := make([]string, 0, len(tickers))
	for _, t := range tickers {
		ids = append(ids, models.NormalizeTicker(t))
	}
	if dropped := session.Select(ids...); len(dropped) > 0 {
		fmt.Fprintf(out, "Not in the filtered result: %s\n", strings.Join(dropped, ", "))
	}
	stocks := session.Selected()
	if len(stocks) == 0 {
		fmt.Fprintln(out, "No selected stocks match the criteria.")
		return nil
	}
	writeTable(cmd, render.StockTable(stocks), markdown)

	c := filter.Compare(stocks)
	fmt.Fprintf(out, "Average PER %.1f, ROE %.1f%%, dividend %.1f%% across %d sector(s)\n",
		c.AvgPER, c.AvgROE, c.AvgDividendYield, c.SectorCount)
	if c.Profile != "" {
		fmt.Fprintln(out, c.Profile)
	}
	return nil
}

func newFilterETFsCmd(opts *rootOptions) *cobra.Command {
	var preset string
	var markdown, excludeLeveraged bool
	cmd := &cobra.Command{
		Use:   "etfs",
		Short: "List ETFs matching the criteria",
		Args:  cobra.NoArgs,
	}
	values := registerBounds(cmd.Flags(), etfFlags)
	cmd.Flags().StringVar(&preset, "preset", "", "named preset (replaces range flags)")
	cmd.Flags().BoolVar(&excludeLeveraged, "exclude-leveraged", false, "drop leveraged ETFs")
	cmd.Flags().BoolVar(&markdown, "markdown", false, "print a markdown table")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		cat, err := opts.loadCatalog()
		if err != nil {
			return err
		}
		q := toQuery(values)
		if excludeLeveraged {
			q.Set("exclude_leveraged", "true")
		}
		c := filter.ETFCriteriaFromQuery(q)
		if preset != "" {
			if c, err = filter.ETFPreset(preset); err != nil {
				return err
			}
		}
		etfs := filter.ApplyFilters(cat.ETFs(), c)
		if len(etfs) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No ETFs match the criteria.")
			return nil
		}
		writeTable(cmd, render.ETFTable(etfs), markdown)
		return nil
	}
	return cmd
}

func writeTable(cmd *cobra.Command, tw table.Writer, markdown bool) {
	if markdown {
		fmt.Fprintln(cmd.OutOrStdout(), render.Markdown(tw))
		return
	}
	render.Print(cmd.OutOrStdout(), tw)
}

func newPresetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "presets",
		Short: "List the stock and ETF presets",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Stock presets")
			render.Print(out, render.PresetTable(filter.Presets(models.KindStock)))
			fmt.Fprintln(out, "ETF presets")
			render.Print(out, render.PresetTable(filter.Presets(models.KindETF)))
		},
	}
}
