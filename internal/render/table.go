// Package render builds go-pretty tables for catalog rows, holdings, quotas
// and reports. The CLI prints them styled; MCP tools return them as markdown.
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/purunsolnp/sonagi-stock/internal/models"
	"github.com/purunsolnp/sonagi-stock/internal/services/filter"
)

// Print writes tw to w with the terminal style.
func Print(w io.Writer, tw table.Writer) {
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleLight)
	tw.Style().Options.SeparateRows = false
	tw.Render()
}

// Markdown renders tw as a markdown table.
func Markdown(tw table.Writer) string {
	return tw.RenderMarkdown()
}

func number(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

func rightAligned(cols ...int) []table.ColumnConfig {
	cfgs := make([]table.ColumnConfig, 0, len(cols))
	for _, c := range cols {
		cfgs = append(cfgs, table.ColumnConfig{Number: c, Align: text.AlignRight, AlignHeader: text.AlignRight})
	}
	return cfgs
}

// StockTable lists stocks in the given order.
func StockTable(stocks []models.Stock) table.Writer {
	tw := table.NewWriter()
	tw.AppendHeader(table.Row{"Ticker", "Name", "Sector", "Price", "PER", "ROE", "Div %", "Cap ($B)"})
	for _, s := range stocks {
		tw.AppendRow(table.Row{s.Ticker, s.Name, s.Sector, number(s.Price), number(s.PER), number(s.ROE), number(s.DividendYield), number(s.MarketCap)})
	}
	tw.SetColumnConfigs(rightAligned(4, 5, 6, 7, 8))
	return tw
}

// ETFTable lists ETFs in the given order.
func ETFTable(etfs []models.ETF) table.Writer {
	tw := table.NewWriter()
	tw.AppendHeader(table.Row{"Ticker", "Name", "Theme", "Price", "Div %", "Expense %", "AUM ($M)", "Leveraged"})
	for _, e := range etfs {
		lev := ""
		if e.IsLeveraged {
			lev = "yes"
		}
		tw.AppendRow(table.Row{e.Ticker, e.Name, e.Theme, number(e.Price), number(e.DividendYield), number(e.ExpenseRatio), number(e.AUM), lev})
	}
	tw.SetColumnConfigs(rightAligned(4, 5, 6, 7))
	return tw
}

// PresetTable lists preset names and labels.
func PresetTable(presets []filter.PresetInfo) table.Writer {
	tw := table.NewWriter()
	tw.AppendHeader(table.Row{"Kind", "Preset", "Label"})
	for _, p := range presets {
		tw.AppendRow(table.Row{p.Kind, p.Name, p.Label})
	}
	return tw
}

// PortfolioTable lists holdings with a totals footer.
func PortfolioTable(view *models.PortfolioView) table.Writer {
	tw := table.NewWriter()
	tw.AppendHeader(table.Row{"Ticker", "Name", "Type", "Qty", "Avg", "Current", "Value", "Return", "Return %"})
	for _, it := range view.Items {
		tw.AppendRow(table.Row{
			it.Ticker, it.Name, it.Classification, it.Quantity,
			number(it.AvgPrice), number(it.CurrentPrice), number(it.CurrentValue),
			number(it.ReturnAmount), number(it.ReturnRate),
		})
	}
	t := view.Totals
	tw.AppendFooter(table.Row{"Total", fmt.Sprintf("%d items", t.Count), "", "", number(t.TotalCost), "", number(t.TotalValue), number(t.ReturnAmount), number(t.ReturnRate)})
	tw.SetColumnConfigs(rightAligned(4, 5, 6, 7, 8, 9))
	return tw
}

// QuotaTable lists quota statuses.
func QuotaTable(statuses []models.QuotaStatus) table.Writer {
	tw := table.NewWriter()
	tw.AppendHeader(table.Row{"User", "Period", "Usage", "Limit", "Remaining", "Enabled"})
	for _, s := range statuses {
		tw.AppendRow(table.Row{s.UserID, s.Period, s.Usage, s.Limit, s.Remaining, s.Enabled})
	}
	tw.SetColumnConfigs(rightAligned(3, 4, 5))
	return tw
}

// ReportTable lists reports with a one-line summary each.
func ReportTable(reports []*models.Report) table.Writer {
	tw := table.NewWriter()
	tw.AppendHeader(table.Row{"Type", "Subject", "Style", "Updated", "Summary"})
	for _, r := range reports {
		tw.AppendRow(table.Row{r.SubjectType, r.SubjectID, r.Style, r.UpdatedAt.Format("2006-01-02 15:04"), summaryLine(r)})
	}
	return tw
}

func summaryLine(r *models.Report) string {
	var s string
	switch {
	case r.Instrument != nil:
		s = r.Instrument.Summary
	case r.Portfolio != nil:
		s = r.Portfolio.Summary
	}
	if s == "" && r.Error != "" {
		s = r.Error
	}
	s = strings.Join(strings.Fields(s), " ")
	if runes := []rune(s); len(runes) > 80 {
		s = string(runes[:80]) + "…"
	}
	return s
}
