// Package market serves deterministic market datasets that stand in
// for external data feeds. Figures are fixtures, not live data.
package market

import (
	_ "embed"
	"fmt"
	"regexp"
	"strings"

	"go.yaml.in/yaml/v3"
)

//go:embed catalog.yaml
var catalogYAML []byte

// DefaultSymbol is used when no ticker can be recognized in a request.
const DefaultSymbol = "0700.HK"

// Quote holds the fundamentals served by the data collector.
type Quote struct {
	Price         string `yaml:"price"`
	MarketCap     string `yaml:"market_cap"`
	PERatio       string `yaml:"pe_ratio"`
	PBRatio       string `yaml:"pb_ratio"`
	ROE           string `yaml:"roe"`
	DividendYield string `yaml:"dividend_yield"`
	High52W       string `yaml:"high_52w"`
	Low52W        string `yaml:"low_52w"`
	DayChange     string `yaml:"day_change"`
	RevenueGrowth string `yaml:"revenue_growth"`
	NetMargin     string `yaml:"net_margin"`
	DebtRatio     string `yaml:"debt_ratio"`
}

// Technical holds indicator readings served by the technical analyst.
type Technical struct {
	MA5         string   `yaml:"ma5"`
	MA20        string   `yaml:"ma20"`
	MA60        string   `yaml:"ma60"`
	MACD        string   `yaml:"macd"`
	RSI         string   `yaml:"rsi"`
	KDJ         string   `yaml:"kdj"`
	Supports    []string `yaml:"supports"`
	Resistances []string `yaml:"resistances"`
	Outlook     string   `yaml:"outlook"`
}

// News holds headlines and sentiment served by the news analyst.
type News struct {
	Headlines     []string `yaml:"headlines"`
	Sentiment     string   `yaml:"sentiment"`
	AnalystRating string   `yaml:"analyst_rating"`
	Catalysts     []string `yaml:"catalysts"`
}

// Risk holds the risk metrics served by the risk assessor.
type Risk struct {
	ValueAtRisk string   `yaml:"value_at_risk"`
	Beta        string   `yaml:"beta"`
	MaxDrawdown string   `yaml:"max_drawdown"`
	Volatility  string   `yaml:"volatility"`
	Factors     []string `yaml:"factors"`
	Advice      []string `yaml:"advice"`
}

// Dataset is the full fixture for one symbol.
type Dataset struct {
	Symbol    string    `yaml:"symbol"`
	Company   string    `yaml:"company"`
	Aliases   []string  `yaml:"aliases"`
	Quote     Quote     `yaml:"quote"`
	Technical Technical `yaml:"technical"`
	News      News      `yaml:"news"`
	Risk      Risk      `yaml:"risk"`
}

type catalogFile struct {
	DefaultSymbol string    `yaml:"default_symbol"`
	Datasets      []Dataset `yaml:"datasets"`
}

// Catalog is the loaded set of datasets, keyed by upper-cased symbol.
type Catalog struct {
	defaultSymbol string
	datasets      map[string]Dataset
	order         []string
}

// Load parses the embedded catalog.
func Load() (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(catalogYAML, &file); err != nil {
		return nil, fmt.Errorf("parse market catalog: %w", err)
	}
	if len(file.Datasets) == 0 {
		return nil, fmt.Errorf("market catalog declares no datasets")
	}

	c := &Catalog{
		defaultSymbol: file.DefaultSymbol,
		datasets:      make(map[string]Dataset, len(file.Datasets)),
	}
	if c.defaultSymbol == "" {
		c.defaultSymbol = file.Datasets[0].Symbol
	}
	for _, ds := range file.Datasets {
		key := normalizeSymbol(ds.Symbol)
		c.datasets[key] = ds
		c.order = append(c.order, ds.Symbol)
	}
	if _, ok := c.datasets[normalizeSymbol(c.defaultSymbol)]; !ok {
		return nil, fmt.Errorf("default symbol %q has no dataset", c.defaultSymbol)
	}
	return c, nil
}

// Symbols returns the catalog's symbols in file order.
func (c *Catalog) Symbols() []string {
	return append([]string(nil), c.order...)
}

// Lookup returns the dataset for a symbol. Unknown symbols receive the
// default dataset relabeled with the requested symbol, mirroring a feed
// that answers every query.
func (c *Catalog) Lookup(symbol string) Dataset {
	key := normalizeSymbol(symbol)
	if ds, ok := c.datasets[key]; ok {
		return ds
	}
	ds := c.datasets[normalizeSymbol(c.defaultSymbol)]
	if strings.TrimSpace(symbol) != "" {
		ds.Symbol = strings.TrimSpace(symbol)
	}
	return ds
}

// Resolve maps free text to a symbol: catalog aliases first, then
// recognizable ticker shapes, then the default symbol.
func (c *Catalog) Resolve(text string) string {
	lower := strings.ToLower(text)
	for _, id := range c.order {
		ds := c.datasets[normalizeSymbol(id)]
		for _, alias := range ds.Aliases {
			if alias != "" && strings.Contains(lower, strings.ToLower(alias)) {
				return ds.Symbol
			}
		}
	}
	return GuessSymbol(text)
}

// Exchange-suffixed tickers ("0700.HK", "600519.SS") and $-prefixed
// US tickers ("$AAPL"). Bare words are deliberately not matched; plain
// company names resolve through catalog aliases instead.
var (
	suffixedTickerPattern = regexp.MustCompile(`(?i)\b\d{4,6}\.(HK|SS|SZ|T|L)\b`)
	dollarTickerPattern   = regexp.MustCompile(`\$([A-Z]{1,5})\b`)
)

// GuessSymbol extracts a ticker from free text without consulting the
// catalog, returning DefaultSymbol when nothing matches.
func GuessSymbol(text string) string {
	if m := suffixedTickerPattern.FindString(text); m != "" {
		return strings.ToUpper(m)
	}
	if m := dollarTickerPattern.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	return DefaultSymbol
}

func normalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}
