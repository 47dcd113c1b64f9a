package domain

import "time"

// StudyType identifies one of the statistical studies the engine can run
// against a single instrument's daily bar series.
type StudyType string

// The closed set of supported study types.
const (
	StudyCloseAboveOpen     StudyType = "close_above_open"
	StudyCloseAbovePrior    StudyType = "close_above_prior"
	StudyReturnDistribution StudyType = "return_distribution"
	StudyStreaks            StudyType = "streaks"
	StudyDayOfWeek          StudyType = "day_of_week"
	StudyMonthOfYear        StudyType = "month_of_year"
	StudyGapAnalysis        StudyType = "gap_analysis"
	StudyVolatilityRegime   StudyType = "volatility_regime"
	StudyDrawdownAnalysis   StudyType = "drawdown_analysis"
	StudyMovingAverage      StudyType = "moving_average"
	StudyVolumeAnalysis     StudyType = "volume_analysis"
	StudyRSIAnalysis        StudyType = "rsi_analysis"
	StudyMeanReversion      StudyType = "mean_reversion"
	StudyRangeAnalysis      StudyType = "range_analysis"
	StudyHighLow            StudyType = "high_low"
	StudyTrendStrength      StudyType = "trend_strength"
	StudyPriceTargets       StudyType = "price_targets"
)

// AllStudyTypes lists every supported study type in a stable order.
var AllStudyTypes = []StudyType{
	StudyCloseAboveOpen,
	StudyCloseAbovePrior,
	StudyReturnDistribution,
	StudyStreaks,
	StudyDayOfWeek,
	StudyMonthOfYear,
	StudyGapAnalysis,
	StudyVolatilityRegime,
	StudyDrawdownAnalysis,
	StudyMovingAverage,
	StudyVolumeAnalysis,
	StudyRSIAnalysis,
	StudyMeanReversion,
	StudyRangeAnalysis,
	StudyHighLow,
	StudyTrendStrength,
	StudyPriceTargets,
}

// Valid reports whether t is a supported study type.
func (t StudyType) Valid() bool {
	for _, s := range AllStudyTypes {
		if t == s {
			return true
		}
	}
	return false
}

// StudyParams tunes the studies that accept configuration. Zero values mean
// "use the study's default".
type StudyParams struct {
	ShortPeriod         int     `json:"shortPeriod,omitempty"`         // moving averages, default 20
	MediumPeriod        int     `json:"mediumPeriod,omitempty"`        // moving averages, default 50
	LongPeriod          int     `json:"longPeriod,omitempty"`          // moving averages, default 200
	RSIPeriod           int     `json:"rsiPeriod,omitempty"`           // default 14
	ForwardDays         int     `json:"forwardDays,omitempty"`         // forward-return studies, default 5
	HighVolumeThreshold float64 `json:"highVolumeThreshold,omitempty"` // multiple of average volume, default 1.5
	RollingWindow       int     `json:"rollingWindow,omitempty"`       // high/low study, default 20
	TargetDays          int     `json:"targetDays,omitempty"`          // price targets horizon, default 21
}

// StudyResult is the tagged union returned by the study engine. Type selects
// which variant pointer is populated; all other variants are nil.
type StudyResult struct {
	Ticker           string      `json:"ticker"`
	Type             StudyType   `json:"type"`
	BarsAnalyzed     int         `json:"barsAnalyzed"`
	DataQuality      DataQuality `json:"dataQuality"`
	UsedFallbackData bool        `json:"usedFallbackData"`

	Percentage    *PercentageResult    `json:"percentage,omitempty"`
	Distribution  *DistributionResult  `json:"distribution,omitempty"`
	Streaks       *StreaksResult       `json:"streaks,omitempty"`
	Calendar      *CalendarResult      `json:"calendar,omitempty"`
	Gaps          *GapAnalysisResult   `json:"gapAnalysis,omitempty"`
	Volatility    *VolatilityResult    `json:"volatility,omitempty"`
	Drawdowns     *DrawdownResult      `json:"drawdown,omitempty"`
	MovingAverage *MovingAverageResult `json:"movingAverage,omitempty"`
	Volume        *VolumeResult        `json:"volume,omitempty"`
	RSI           *RSIResult           `json:"rsi,omitempty"`
	MeanReversion *MeanReversionResult `json:"meanReversion,omitempty"`
	Range         *RangeResult         `json:"range,omitempty"`
	HighLow       *HighLowResult       `json:"highLow,omitempty"`
	TrendStrength *TrendStrengthResult `json:"trendStrength,omitempty"`
	PriceTargets  *PriceTargetsResult  `json:"priceTargets,omitempty"`
}

// ForwardStats summarizes forward returns following some trigger event.
type ForwardStats struct {
	Events       int     `json:"events"`
	AvgReturnPct float64 `json:"avgReturnPct"`
	HitRatePct   float64 `json:"hitRatePct"`
}

// PercentageResult reports how often a daily comparison held. Ties are
// counted as unchanged, never folded into either side.
type PercentageResult struct {
	TotalDays     int     `json:"totalDays"`
	MatchedDays   int     `json:"matchedDays"`
	UnchangedDays int     `json:"unchangedDays"`
	MatchedPct    float64 `json:"matchedPct"`
	UnchangedPct  float64 `json:"unchangedPct"`
}

// HistogramBucket is one fixed-width bucket of a return histogram. Bounds are
// in percent.
type HistogramBucket struct {
	FromPct float64 `json:"fromPct"`
	ToPct   float64 `json:"toPct"`
	Count   int     `json:"count"`
}

// DistributionPercentiles holds nearest-rank percentiles of daily returns,
// in percent.
type DistributionPercentiles struct {
	P5  float64 `json:"p5"`
	P25 float64 `json:"p25"`
	P50 float64 `json:"p50"`
	P75 float64 `json:"p75"`
	P95 float64 `json:"p95"`
}

// DistributionResult describes the shape of the daily-return distribution.
// All return figures are in percent.
type DistributionResult struct {
	MeanPct        float64                 `json:"meanPct"`
	StdDevPct      float64                 `json:"stdDevPct"`
	MinPct         float64                 `json:"minPct"`
	MaxPct         float64                 `json:"maxPct"`
	Percentiles    DistributionPercentiles `json:"percentiles"`
	Histogram      []HistogramBucket       `json:"histogram"`
	Skewness       float64                 `json:"skewness"`
	ExcessKurtosis float64                 `json:"excessKurtosis"`
}

// StreaksResult reports consecutive same-direction close runs. Current is
// signed: positive for a still-open up streak, negative for down.
type StreaksResult struct {
	MaxUpStreak   int     `json:"maxUpStreak"`
	MaxDownStreak int     `json:"maxDownStreak"`
	AvgUpStreak   float64 `json:"avgUpStreak"`
	AvgDownStreak float64 `json:"avgDownStreak"`
	UpStreaks     int     `json:"upStreaks"`
	DownStreaks   int     `json:"downStreaks"`
	Current       int     `json:"current"`
}

// CalendarBucket is one seasonality bucket (a weekday or a month).
type CalendarBucket struct {
	Label        string  `json:"label"`
	Periods      int     `json:"periods"`
	AvgReturnPct float64 `json:"avgReturnPct"`
	HitRatePct   float64 `json:"hitRatePct"`
}

// CalendarResult buckets returns by calendar key.
type CalendarResult struct {
	Buckets []CalendarBucket `json:"buckets"`
}

// GapStats summarizes one direction of opening gaps.
type GapStats struct {
	Count           int     `json:"count"`
	Filled          int     `json:"filled"`
	Continuation    int     `json:"continuation"`
	FilledPct       float64 `json:"filledPct"`
	ContinuationPct float64 `json:"continuationPct"`
	AvgGapPct       float64 `json:"avgGapPct"`
}

// GapAnalysisResult classifies opening gaps of at least 0.5% of the prior
// close.
type GapAnalysisResult struct {
	UpGaps   GapStats `json:"upGaps"`
	DownGaps GapStats `json:"downGaps"`
}

// VolatilityResult describes the instrument's volatility regime.
type VolatilityResult struct {
	ATR                 float64 `json:"atr"`
	ATRPct              float64 `json:"atrPct"`
	RollingVolPct       float64 `json:"rollingVolPct"`    // latest 20-day annualized, percent
	AvgRollingVolPct    float64 `json:"avgRollingVolPct"` // average of the rolling series
	HighVolDays         int     `json:"highVolDays"`
	ClusteringRatePct   float64 `json:"clusteringRatePct"`
	HighVolThresholdPct float64 `json:"highVolThresholdPct"` // 1.5x mean absolute daily return
}

// DrawdownEpisode is one peak-to-trough-to-recovery excursion. RecoveryDate
// is zero when the drawdown was still open at the end of the series.
type DrawdownEpisode struct {
	PeakDate     time.Time `json:"peakDate"`
	TroughDate   time.Time `json:"troughDate"`
	RecoveryDate time.Time `json:"recoveryDate,omitzero"`
	DepthPct     float64   `json:"depthPct"`
	LengthDays   int       `json:"lengthDays"`
	Recovered    bool      `json:"recovered"`
}

// DrawdownResult enumerates every drawdown episode in the series.
type DrawdownResult struct {
	Episodes    []DrawdownEpisode `json:"episodes"`
	Count       int               `json:"count"`
	MaxDepthPct float64           `json:"maxDepthPct"`
	AvgDepthPct float64           `json:"avgDepthPct"`
}

// MovingAverageResult reports SMA/EMA levels and the latest medium-vs-long
// SMA cross.
type MovingAverageResult struct {
	ShortPeriod   int       `json:"shortPeriod"`
	MediumPeriod  int       `json:"mediumPeriod"`
	LongPeriod    int       `json:"longPeriod"`
	SMAShort      float64   `json:"smaShort"`
	SMAMedium     float64   `json:"smaMedium"`
	SMALong       float64   `json:"smaLong"`
	EMAShort      float64   `json:"emaShort"`
	EMAMedium     float64   `json:"emaMedium"`
	EMALong       float64   `json:"emaLong"`
	LastCross     string    `json:"lastCross"` // "golden", "death", or "none"
	LastCrossDate time.Time `json:"lastCrossDate,omitzero"`
}

// VolumeResult reports average volume split by day direction and behavior
// after unusually high-volume days.
type VolumeResult struct {
	AvgVolume        float64      `json:"avgVolume"`
	UpDayAvgVolume   float64      `json:"upDayAvgVolume"`
	DownDayAvgVolume float64      `json:"downDayAvgVolume"`
	HighVolumeDays   int          `json:"highVolumeDays"`
	AfterHighVolume  ForwardStats `json:"afterHighVolume"`
	VolumeBias       string       `json:"volumeBias"` // "accumulation", "distribution", or "neutral"
}

// RSIResult reports the current Wilder RSI and forward returns after
// overbought/oversold crossings.
type RSIResult struct {
	Period          int          `json:"period"`
	Current         float64      `json:"current"`
	AfterOverbought ForwardStats `json:"afterOverbought"`
	AfterOversold   ForwardStats `json:"afterOversold"`
}

// MeanReversionResult classifies the return process and reports forward
// behavior after large one-day moves.
type MeanReversionResult struct {
	Autocorrelation float64      `json:"autocorrelation"`
	Regime          string       `json:"regime"` // "mean_reverting", "trending", or "random"
	AfterUpMove     ForwardStats `json:"afterUpMove"`
	AfterDownMove   ForwardStats `json:"afterDownMove"`
}

// RangeResult classifies bars against the prior bar's high-low range.
type RangeResult struct {
	AvgRangePct float64 `json:"avgRangePct"`
	InsideDays  int     `json:"insideDays"`
	OutsideDays int     `json:"outsideDays"`
	InsidePct   float64 `json:"insidePct"`
	OutsidePct  float64 `json:"outsidePct"`
}

// HighLowResult reports rolling new highs/lows and the follow-through after
// each.
type HighLowResult struct {
	Window       int          `json:"window"`
	NewHighs     int          `json:"newHighs"`
	NewLows      int          `json:"newLows"`
	AfterNewHigh ForwardStats `json:"afterNewHigh"`
	AfterNewLow  ForwardStats `json:"afterNewLow"`
}

// TrendStrengthResult scores the trend 0-5 from price-vs-MA and MA-vs-MA
// orderings.
type TrendStrengthResult struct {
	Score            int    `json:"score"`
	Direction        string `json:"direction"` // "bullish", "bearish", or "mixed"
	PriceAboveShort  bool   `json:"priceAboveShort"`
	PriceAboveMedium bool   `json:"priceAboveMedium"`
	PriceAboveLong   bool   `json:"priceAboveLong"`
	ShortAboveMedium bool   `json:"shortAboveMedium"`
	MediumAboveLong  bool   `json:"mediumAboveLong"`
}

// PriceTarget is one projected price band at k standard deviations.
type PriceTarget struct {
	Sigma float64 `json:"sigma"`
	Upper float64 `json:"upper"`
	Lower float64 `json:"lower"`
}

// PriceLevel is one volume-weighted support or resistance level.
type PriceLevel struct {
	Price  float64 `json:"price"`
	Volume int64   `json:"volume"`
}

// PriceTargetsResult projects forward price bands and volume-weighted
// support/resistance levels.
type PriceTargetsResult struct {
	CurrentPrice    float64       `json:"currentPrice"`
	HorizonDays     int           `json:"horizonDays"`
	MeanDailyReturn float64       `json:"meanDailyReturn"`
	DailyStdDev     float64       `json:"dailyStdDev"`
	Targets         []PriceTarget `json:"targets"`
	Support         []PriceLevel  `json:"support"`
	Resistance      []PriceLevel  `json:"resistance"`
}
