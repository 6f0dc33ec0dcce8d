package app

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/purunsolnp/sonagi-stock/internal/models"
	"github.com/purunsolnp/sonagi-stock/internal/render"
	"github.com/purunsolnp/sonagi-stock/internal/services/filter"
	"github.com/purunsolnp/sonagi-stock/internal/services/report"
)

// registerTools adds the read-only MCP tools. AI analysis stays on the REST
// surface where quota errors map onto HTTP statuses.
func (a *App) registerTools() {
	s := a.MCPServer
	s.AddTool(createFilterStocksTool(), a.handleFilterStocks)
	s.AddTool(createFilterETFsTool(), a.handleFilterETFs)
	s.AddTool(createListPresetsTool(), a.handleListPresets)
	s.AddTool(createGetReportTool(), a.handleGetReport)
	s.AddTool(createListReportsTool(), a.handleListReports)
	s.AddTool(createQuotaStatusTool(), a.handleQuotaStatus)
	s.AddTool(createPortfolioSummaryTool(), a.handlePortfolioSummary)
}

// ToolNames lists the registered MCP tools.
func (a *App) ToolNames() []string {
	return []string{"filter_stocks", "filter_etfs", "list_presets", "get_report", "list_reports", "quota_status", "portfolio_summary"}
}

func createFilterStocksTool() mcp.Tool {
	return mcp.NewTool("filter_stocks",
		mcp.WithDescription("Filter the stock catalog by PER, ROE, market cap (USD billions), dividend yield and sector, or apply a named preset."),
		mcp.WithString("preset", mcp.Description("Preset name: aggressive or stable. Overrides the range arguments.")),
		mcp.WithNumber("per_min"), mcp.WithNumber("per_max"),
		mcp.WithNumber("roe_min"), mcp.WithNumber("roe_max"),
		mcp.WithNumber("market_cap_min"), mcp.WithNumber("market_cap_max"),
		mcp.WithNumber("dividend_min"), mcp.WithNumber("dividend_max"),
		mcp.WithString("sector", mcp.Description("Exact sector, e.g. 'Technology'")),
	)
}

func createFilterETFsTool() mcp.Tool {
	return mcp.NewTool("filter_etfs",
		mcp.WithDescription("Filter the ETF catalog by dividend yield, expense ratio (%), AUM (USD millions) and theme, or apply a named preset."),
		mcp.WithString("preset", mcp.Description("Preset name: aggressive or stable. Overrides the range arguments.")),
		mcp.WithNumber("dividend_min"), mcp.WithNumber("dividend_max"),
		mcp.WithNumber("expense_min"), mcp.WithNumber("expense_max"),
		mcp.WithNumber("aum_min"), mcp.WithNumber("aum_max"),
		mcp.WithString("theme", mcp.Description("Exact theme, e.g. 'Dividend'")),
		mcp.WithBoolean("exclude_leveraged", mcp.Description("Drop leveraged ETFs (default: false)")),
	)
}

func createListPresetsTool() mcp.Tool {
	return mcp.NewTool("list_presets",
		mcp.WithDescription("List the filter presets for stocks and ETFs."),
	)
}

func createGetReportTool() mcp.Tool {
	return mcp.NewTool("get_report",
		mcp.WithDescription("Get the latest saved analysis report for a ticker, or the portfolio report."),
		mcp.WithString("subject_type", mcp.Required(), mcp.Description("stock, etf or portfolio")),
		mcp.WithString("ticker", mcp.Description("Ticker for stock and ETF reports")),
	)
}

func createListReportsTool() mcp.Tool {
	return mcp.NewTool("list_reports",
		mcp.WithDescription("List saved reports, newest first."),
		mcp.WithString("subject_type", mcp.Description("Optional filter: stock, etf or portfolio")),
	)
}

func createQuotaStatusTool() mcp.Tool {
	return mcp.NewTool("quota_status",
		mcp.WithDescription("Show this month's AI usage and limit for the caller."),
	)
}

func createPortfolioSummaryTool() mcp.Tool {
	return mcp.NewTool("portfolio_summary",
		mcp.WithDescription("Show portfolio holdings with current value, return and totals."),
	)
}

// criteriaQuery copies present tool arguments into query form so tools and
// REST share one criteria parser.
func criteriaQuery(request mcp.CallToolRequest, keys ...string) url.Values {
	q := url.Values{}
	args := request.GetArguments()
	for _, k := range keys {
		if v, ok := args[k]; ok && v != nil {
			q.Set(k, fmt.Sprint(v))
		}
	}
	return q
}

func (a *App) handleFilterStocks(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var c models.StockCriteria
	if name := request.GetString("preset", ""); name != "" {
		p, err := filter.StockPreset(name)
		if err != nil {
			return errorResult(fmt.Sprintf("Error: %v", err)), nil
		}
		c = p
	} else {
		c = filter.StockCriteriaFromQuery(criteriaQuery(request,
			"per_min", "per_max", "roe_min", "roe_max", "market_cap_min", "market_cap_max",
			"dividend_min", "dividend_max", "sector"))
	}

	stocks := filter.ApplyFilters(a.Catalog.Stocks(), c)
	if len(stocks) == 0 {
		return textResult("No stocks match the criteria."), nil
	}
	return textResult(fmt.Sprintf("%d stocks\n\n%s", len(stocks), render.Markdown(render.StockTable(stocks)))), nil
}

func (a *App) handleFilterETFs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var c models.ETFCriteria
	if name := request.GetString("preset", ""); name != "" {
		p, err := filter.ETFPreset(name)
		if err != nil {
			return errorResult(fmt.Sprintf("Error: %v", err)), nil
		}
		c = p
	} else {
		c = filter.ETFCriteriaFromQuery(criteriaQuery(request,
			"dividend_min", "dividend_max", "expense_min", "expense_max", "aum_min", "aum_max",
			"theme", "exclude_leveraged"))
	}

	etfs := filter.ApplyFilters(a.Catalog.ETFs(), c)
	if len(etfs) == 0 {
		return textResult("No ETFs match the criteria."), nil
	}
	return textResult(fmt.Sprintf("%d ETFs\n\n%s", len(etfs), render.Markdown(render.ETFTable(etfs)))), nil
}

func (a *App) handleListPresets(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	presets := append(filter.Presets(models.KindStock), filter.Presets(models.KindETF)...)
	return textResult(render.Markdown(render.PresetTable(presets))), nil
}

func (a *App) handleGetReport(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	subjectType, err := request.RequireString("subject_type")
	if err != nil || subjectType == "" {
		return errorResult("Error: subject_type parameter is required"), nil
	}

	var r *models.Report
	switch t := models.SubjectType(strings.ToLower(subjectType)); t {
	case models.SubjectPortfolio:
		r, err = a.ReportService.GetPortfolioReport(ctx)
	case models.SubjectStock, models.SubjectETF:
		ticker := models.NormalizeTicker(request.GetString("ticker", ""))
		if ticker == "" {
			return errorResult("Error: ticker parameter is required for stock and ETF reports"), nil
		}
		r, err = a.ReportService.GetReport(ctx, t, ticker)
	default:
		return errorResult(fmt.Sprintf("Error: unknown subject_type %q", subjectType)), nil
	}
	if errors.Is(err, models.ErrNotFound) {
		return textResult("No report saved yet."), nil
	}
	if err != nil {
		a.Logger.Error().Err(err).Str("subject_type", subjectType).Msg("get_report failed")
		return errorResult(fmt.Sprintf("Report error: %v", err)), nil
	}
	return textResult(report.Markdown(r)), nil
}

func (a *App) handleListReports(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	t := models.SubjectType(strings.ToLower(request.GetString("subject_type", "")))
	if t != "" && !t.Valid() {
		return errorResult(fmt.Sprintf("Error: unknown subject_type %q", t)), nil
	}

	reports, err := a.ReportService.ListReports(ctx, t)
	if err != nil {
		a.Logger.Error().Err(err).Msg("list_reports failed")
		return errorResult(fmt.Sprintf("Report error: %v", err)), nil
	}
	if len(reports) == 0 {
		return textResult("No reports saved yet."), nil
	}
	return textResult(render.Markdown(render.ReportTable(reports))), nil
}

func (a *App) handleQuotaStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	st, err := a.QuotaService.Load(ctx)
	if err != nil {
		a.Logger.Error().Err(err).Msg("quota_status failed")
		return errorResult(fmt.Sprintf("Quota error: %v", err)), nil
	}
	return textResult(render.Markdown(render.QuotaTable([]models.QuotaStatus{*st}))), nil
}

func (a *App) handlePortfolioSummary(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	view, err := a.PortfolioService.View(ctx)
	if err != nil {
		a.Logger.Error().Err(err).Msg("portfolio_summary failed")
		return errorResult(fmt.Sprintf("Portfolio error: %v", err)), nil
	}
	if len(view.Items) == 0 {
		return textResult("The portfolio is empty."), nil
	}
	return textResult(render.Markdown(render.PortfolioTable(view))), nil
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(text),
		},
	}
}

func errorResult(message string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(message),
		},
		IsError: true,
	}
}
