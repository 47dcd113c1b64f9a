package domain

import "errors"

// Sentinel errors for terminal input and data conditions. Recoverable data
// issues (sparse coverage, missing prices on individual days) are never
// errors; they surface as warnings or reduced DataQuality instead.
var (
	// ErrInsufficientData means no requested instrument had any usable bars,
	// or a study was asked to run on fewer than MinStudyBars bars.
	ErrInsufficientData = errors.New("insufficient data")

	// ErrInvalidAllocation means the allocation weights do not sum to 100.
	ErrInvalidAllocation = errors.New("allocation weights must sum to 100")

	// ErrNoTickers means the request named no instruments.
	ErrNoTickers = errors.New("no tickers requested")

	// ErrMissingDateRange means the request omitted its start or end date.
	ErrMissingDateRange = errors.New("missing date range")

	// ErrUnsupportedStudy means the requested study type is not in the
	// supported set.
	ErrUnsupportedStudy = errors.New("unsupported study type")
)

// MinStudyBars is the minimum sample size a study will accept.
const MinStudyBars = 20
