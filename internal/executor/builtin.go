package executor

import (
	"context"
	"fmt"
	"strings"

	"github.com/quantfoundry/vantage/internal/market"
	"github.com/quantfoundry/vantage/pkg/models"
)

// NewBuiltinRegistry wires the canned analysts over the market catalog
// for every task-producing kind. The coordinator kind has no provider;
// the scheduler completes the root task itself.
func NewBuiltinRegistry(catalog *market.Catalog) *Registry {
	r := NewRegistry()
	r.Register(models.KindDataCollector, DataCollector{Catalog: catalog})
	r.Register(models.KindTechnicalAnalyst, TechnicalAnalyst{Catalog: catalog})
	r.Register(models.KindNewsAnalyst, NewsAnalyst{Catalog: catalog})
	r.Register(models.KindRiskAssessor, RiskAssessor{Catalog: catalog})
	r.Register(models.KindReportGenerator, ReportGenerator{Catalog: catalog})
	return r
}

// DataCollector serves quote and fundamental snapshots.
type DataCollector struct {
	Catalog *market.Catalog
}

func (p DataCollector) Execute(_ context.Context, req Request) (string, error) {
	ds := p.Catalog.Lookup(symbolFor(p.Catalog, req))
	period := req.Task.Parameters["period"]
	if period == "" {
		period = "1y"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Market snapshot for %s (%s), lookback %s:\n", ds.Symbol, ds.Company, period)
	fmt.Fprintf(&b, "- Price: %s (%s today)\n", ds.Quote.Price, ds.Quote.DayChange)
	fmt.Fprintf(&b, "- Market cap: %s\n", ds.Quote.MarketCap)
	fmt.Fprintf(&b, "- P/E %s, P/B %s, ROE %s\n", ds.Quote.PERatio, ds.Quote.PBRatio, ds.Quote.ROE)
	fmt.Fprintf(&b, "- Dividend yield: %s\n", ds.Quote.DividendYield)
	fmt.Fprintf(&b, "- 52-week range: %s to %s\n", ds.Quote.Low52W, ds.Quote.High52W)
	fmt.Fprintf(&b, "- Revenue growth %s, net margin %s\n", ds.Quote.RevenueGrowth, ds.Quote.NetMargin)
	fmt.Fprintf(&b, "- Debt ratio: %s", ds.Quote.DebtRatio)
	return b.String(), nil
}

// TechnicalAnalyst reads trend and momentum off the catalog fixtures.
type TechnicalAnalyst struct {
	Catalog *market.Catalog
}

func (p TechnicalAnalyst) Execute(_ context.Context, req Request) (string, error) {
	ds := p.Catalog.Lookup(symbolFor(p.Catalog, req))

	var b strings.Builder
	fmt.Fprintf(&b, "Technical read for %s:\n", ds.Symbol)
	if indicators := req.Task.Parameters["indicators"]; indicators != "" {
		fmt.Fprintf(&b, "- Indicators requested: %s\n", indicators)
	}
	fmt.Fprintf(&b, "- MA5 %s / MA20 %s / MA60 %s\n", ds.Technical.MA5, ds.Technical.MA20, ds.Technical.MA60)
	fmt.Fprintf(&b, "- MACD: %s\n", ds.Technical.MACD)
	fmt.Fprintf(&b, "- RSI: %s\n", ds.Technical.RSI)
	fmt.Fprintf(&b, "- KDJ: %s\n", ds.Technical.KDJ)
	fmt.Fprintf(&b, "- Support: %s\n", strings.Join(ds.Technical.Supports, ", "))
	fmt.Fprintf(&b, "- Resistance: %s\n", strings.Join(ds.Technical.Resistances, ", "))
	fmt.Fprintf(&b, "Outlook: %s", ds.Technical.Outlook)
	return b.String(), nil
}

// NewsAnalyst summarizes headlines and sentiment.
type NewsAnalyst struct {
	Catalog *market.Catalog
}

func (p NewsAnalyst) Execute(_ context.Context, req Request) (string, error) {
	ds := p.Catalog.Lookup(symbolFor(p.Catalog, req))
	days := req.Task.Parameters["days"]
	if days == "" {
		days = "7"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "News scan for %s (last %s days):\n", ds.Symbol, days)
	for _, headline := range ds.News.Headlines {
		fmt.Fprintf(&b, "- %s\n", headline)
	}
	fmt.Fprintf(&b, "Sentiment: %s\n", ds.News.Sentiment)
	fmt.Fprintf(&b, "Street view: %s\n", ds.News.AnalystRating)
	fmt.Fprintf(&b, "Watching: %s", strings.Join(ds.News.Catalysts, "; "))
	return b.String(), nil
}

// RiskAssessor reports drawdown, volatility, and sizing guidance.
type RiskAssessor struct {
	Catalog *market.Catalog
}

func (p RiskAssessor) Execute(_ context.Context, req Request) (string, error) {
	ds := p.Catalog.Lookup(symbolFor(p.Catalog, req))
	size := req.Task.Parameters["position_size"]
	if size == "" {
		size = "medium"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Risk profile for %s:\n", ds.Symbol)
	fmt.Fprintf(&b, "- Value at risk: %s\n", ds.Risk.ValueAtRisk)
	fmt.Fprintf(&b, "- Beta %s, volatility %s\n", ds.Risk.Beta, ds.Risk.Volatility)
	fmt.Fprintf(&b, "- Max drawdown: %s\n", ds.Risk.MaxDrawdown)
	b.WriteString("Key risks:\n")
	for _, factor := range ds.Risk.Factors {
		fmt.Fprintf(&b, "- %s\n", factor)
	}
	fmt.Fprintf(&b, "Guidance for a %s position:\n", size)
	for i, advice := range ds.Risk.Advice {
		fmt.Fprintf(&b, "- %s", advice)
		if i < len(ds.Risk.Advice)-1 {
			b.WriteString("\n")
		}
	}
	return b.String(), nil
}

// ReportGenerator folds the finished analyses into a final view.
type ReportGenerator struct {
	Catalog *market.Catalog
}

func (p ReportGenerator) Execute(_ context.Context, req Request) (string, error) {
	ds := p.Catalog.Lookup(symbolFor(p.Catalog, req))

	inputs := 0
	for _, dep := range req.Task.Dependencies {
		if req.Completed[dep] != "" {
			inputs++
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Investment view for %s (%s), drawing on %d completed analyses:\n", ds.Symbol, ds.Company, inputs)
	fmt.Fprintf(&b, "- Technicals: %s\n", ds.Technical.Outlook)
	fmt.Fprintf(&b, "- Sentiment: %s, street view %s\n", ds.News.Sentiment, ds.News.AnalystRating)
	fmt.Fprintf(&b, "- Risk: beta %s, volatility %s, max drawdown %s\n", ds.Risk.Beta, ds.Risk.Volatility, ds.Risk.MaxDrawdown)
	b.WriteString("Stance: constructive on current levels; scale in gradually and respect the risk guidance above.")
	return b.String(), nil
}

// symbolFor picks the symbol a provider should serve: the task's
// symbol or keyword parameter when present, otherwise whatever the
// task description or original request mentions.
func symbolFor(c *market.Catalog, req Request) string {
	if s := strings.TrimSpace(req.Task.Parameters["symbol"]); s != "" {
		return s
	}
	if s := strings.TrimSpace(req.Task.Parameters["keyword"]); s != "" {
		return s
	}
	return c.Resolve(req.Task.Description + " " + req.UserQuery)
}
