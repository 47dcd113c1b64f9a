package validate

import (
	"fmt"
	"math"

	"quantlab/internal/domain"
)

// maxSaneVolatilityPct is the sanity ceiling for annualized portfolio
// volatility. Real diversified portfolios essentially never exceed 100%.
const maxSaneVolatilityPct = 100.0

// weightedReturnTolerance bounds the allowed gap between the reported
// portfolio return and the weight-sum of its components, in percentage
// points.
const weightedReturnTolerance = 0.01

// WeightedComponent is one asset's contribution for the weighted-return
// cross-check. Weight is in percent; ReturnPct is the asset's return in
// percent.
type WeightedComponent struct {
	Weight    float64 `json:"weight"`
	ReturnPct float64 `json:"returnPct"`
}

// MetricsReport is the outcome of sanity-checking computed portfolio
// metrics.
type MetricsReport struct {
	IsValid             bool     `json:"isValid"`
	MetricsInRange      bool     `json:"metricsInRange"`
	WeightedReturnMatch bool     `json:"weightedReturnMatch"`
	Issues              []string `json:"issues,omitempty"`
}

// PortfolioMetrics flags metrics outside realistic bounds and, when given
// per-asset weighted components, verifies the portfolio return equals the
// weight-sum of its components within tolerance.
func PortfolioMetrics(metrics domain.SummaryMetrics, components []WeightedComponent) MetricsReport {
	report := MetricsReport{IsValid: true, MetricsInRange: true, WeightedReturnMatch: true}

	if metrics.AnnualizedVolatility > maxSaneVolatilityPct {
		report.IsValid = false
		report.MetricsInRange = false
		report.Issues = append(report.Issues,
			fmt.Sprintf("annualized volatility %.1f%% above sanity ceiling %.0f%%",
				metrics.AnnualizedVolatility, maxSaneVolatilityPct))
	}
	if metrics.MaxDrawdownPct < 0 || metrics.MaxDrawdownPct > 100 {
		report.IsValid = false
		report.MetricsInRange = false
		report.Issues = append(report.Issues,
			fmt.Sprintf("max drawdown %.1f%% outside [0, 100]", metrics.MaxDrawdownPct))
	}
	if metrics.TotalReturnPct < -100 {
		report.IsValid = false
		report.MetricsInRange = false
		report.Issues = append(report.Issues,
			fmt.Sprintf("total return %.1f%% below -100%%", metrics.TotalReturnPct))
	}

	if len(components) > 0 {
		var weighted float64
		for _, c := range components {
			weighted += c.Weight / 100 * c.ReturnPct
		}
		if math.Abs(weighted-metrics.TotalReturnPct) > weightedReturnTolerance {
			report.IsValid = false
			report.WeightedReturnMatch = false
			report.Issues = append(report.Issues,
				fmt.Sprintf("portfolio return %.4f%% does not match weighted components %.4f%%",
					metrics.TotalReturnPct, weighted))
		}
	}

	return report
}
