package plan

import (
	"fmt"
	"log"

	"github.com/quantfoundry/vantage/internal/graph"
	"github.com/quantfoundry/vantage/internal/market"
	"github.com/quantfoundry/vantage/pkg/models"
)

// Well-known task ids of the default plan.
const (
	FallbackDataTaskID      = "data_collection"
	FallbackTechnicalTaskID = "technical_analysis"
	FallbackNewsTaskID      = "news_analysis"
	FallbackRiskTaskID      = "risk_assessment"
	FallbackReportTaskID    = "report_generation"
)

// Fallback builds the fixed default graph used whenever a generated
// plan is unusable: one data collection task feeding technical, news,
// and risk analysis in parallel, joined by a final report task. The
// request only influences which symbol the tasks target.
func Fallback(request string) *graph.TaskGraph {
	symbol := market.GuessSymbol(request)
	log.Printf("[plan] building default task graph for %s", symbol)

	g := graph.New()
	mustAdd(g, rootTask(request))

	mustAdd(g, &models.Task{
		ID:           FallbackDataTaskID,
		Name:         "Collect Market Data",
		Description:  fmt.Sprintf("Collect quote, fundamentals, and trading history for %s", symbol),
		ExecutorKind: models.KindDataCollector,
		Parameters: map[string]string{
			"symbol": symbol,
			"period": "1y",
		},
	})

	mustAdd(g, &models.Task{
		ID:           FallbackTechnicalTaskID,
		Name:         "Technical Analysis",
		Description:  fmt.Sprintf("Read trend, momentum, and key levels for %s", symbol),
		ExecutorKind: models.KindTechnicalAnalyst,
		Dependencies: []string{FallbackDataTaskID},
		Parameters: map[string]string{
			"symbol":     symbol,
			"indicators": "MA,RSI,MACD",
		},
	})

	mustAdd(g, &models.Task{
		ID:           FallbackNewsTaskID,
		Name:         "News & Sentiment Analysis",
		Description:  fmt.Sprintf("Summarize recent headlines and sentiment for %s", symbol),
		ExecutorKind: models.KindNewsAnalyst,
		Dependencies: []string{FallbackDataTaskID},
		Parameters: map[string]string{
			"keyword": symbol,
			"days":    "7",
		},
	})

	mustAdd(g, &models.Task{
		ID:           FallbackRiskTaskID,
		Name:         "Risk Assessment",
		Description:  fmt.Sprintf("Evaluate drawdown, volatility, and position sizing for %s", symbol),
		ExecutorKind: models.KindRiskAssessor,
		Dependencies: []string{FallbackDataTaskID},
		Parameters: map[string]string{
			"position_size": "medium",
			"market_cap":    "large",
		},
	})

	mustAdd(g, &models.Task{
		ID:           FallbackReportTaskID,
		Name:         "Investment Report",
		Description:  "Combine the analysis results into a final recommendation",
		ExecutorKind: models.KindReportGenerator,
		Dependencies: []string{
			FallbackTechnicalTaskID,
			FallbackNewsTaskID,
			FallbackRiskTaskID,
		},
	})

	return g
}
