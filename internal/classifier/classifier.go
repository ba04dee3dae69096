package classifier

import (
	"log"
	"strings"

	"github.com/shopspring/decimal"

	"psxscan/internal/model"
)

// DefaultMonthCodes are the futures-contract suffixes that mark a symbol
// as a derivative of the underlying equity.
var DefaultMonthCodes = []string{
	"-JAN", "-FEB", "-MAR", "-APR", "-MAY", "-JUN",
	"-JUL", "-AUG", "-SEP", "-OCT", "-NOV", "-DEC",
}

// Config holds the classification thresholds.
type Config struct {
	// CircuitBreakerPct is the percentage move limit (e.g. 7.5).
	CircuitBreakerPct decimal.Decimal
	// CircuitBreakerRsLimit is the absolute rupee floor of the limit.
	CircuitBreakerRsLimit decimal.Decimal
	// MonthCodes are the futures suffixes excluded from scanning.
	MonthCodes []string
}

// DefaultConfig returns the PSX regulatory defaults.
func DefaultConfig() Config {
	return Config{
		CircuitBreakerPct:     decimal.NewFromFloat(7.5),
		CircuitBreakerRsLimit: decimal.NewFromInt(1),
		MonthCodes:            DefaultMonthCodes,
	}
}

// Classifier computes breakout/breakdown statuses. It is a pure function
// of its inputs: no I/O, no shared state, safe to call concurrently.
type Classifier struct {
	cfg Config
}

// New creates a Classifier with the given config, filling zero thresholds
// from the defaults.
func New(cfg Config) *Classifier {
	def := DefaultConfig()
	if cfg.CircuitBreakerPct.IsZero() {
		cfg.CircuitBreakerPct = def.CircuitBreakerPct
	}
	if cfg.CircuitBreakerRsLimit.IsZero() {
		cfg.CircuitBreakerRsLimit = def.CircuitBreakerRsLimit
	}
	if len(cfg.MonthCodes) == 0 {
		cfg.MonthCodes = def.MonthCodes
	}
	return &Classifier{cfg: cfg}
}

// Eligible reports whether a symbol should be classified: it must appear
// in the metadata map and must not carry a futures month suffix.
func (c *Classifier) Eligible(symbol string, meta model.MetadataMap) bool {
	canon := model.CanonicalSymbol(symbol)
	if !meta.Has(canon) {
		return false
	}
	for _, code := range c.cfg.MonthCodes {
		if strings.Contains(canon, code) {
			return false
		}
	}
	return true
}

// Classify produces one ClassificationResult per eligible symbol in the
// today snapshot, in input order. Historical windows may be nil or empty;
// affected statuses degrade to Unavailable. Symbols whose required fields
// (ldcp, open, high, low, close, volume) fail to parse are skipped.
func (c *Classifier) Classify(today, prevDay, weekly, monthly []model.Quote, meta model.MetadataMap) []model.ClassificationResult {
	results := make([]model.ClassificationResult, 0, len(today))
	for _, q := range today {
		if !c.Eligible(q.Symbol, meta) {
			continue
		}
		res, ok := c.classifyOne(q, prevDay, weekly, monthly, meta)
		if !ok {
			continue
		}
		results = append(results, res)
	}
	return results
}

func (c *Classifier) classifyOne(q model.Quote, prevDay, weekly, monthly []model.Quote, meta model.MetadataMap) (model.ClassificationResult, bool) {
	symbol := model.CanonicalSymbol(q.Symbol)

	ldcp, ok1 := ParseDecimal(q.LDCP)
	open, ok2 := ParseDecimal(q.Open)
	high, ok3 := ParseDecimal(q.High)
	low, ok4 := ParseDecimal(q.Low)
	closePx, ok5 := ParseDecimal(q.Close)
	volume, ok6 := ParseVolume(q.Volume)
	if !(ok1 && ok2 && ok3 && ok4 && ok5 && ok6) {
		log.Printf("[WARN] skipping %s: unparseable required field (ldcp=%q open=%q high=%q low=%q close=%q volume=%q)",
			symbol, q.LDCP, q.Open, q.High, q.Low, q.Close, q.Volume)
		return model.ClassificationResult{}, false
	}

	md := meta.Lookup(symbol)
	res := model.ClassificationResult{
		Symbol:       symbol,
		CompanyName:  md.CompanyName,
		Sector:       md.Sector,
		KMICompliant: md.KMICompliant,
		Date:         q.Date,
		LDCP:         ldcp,
		Open:         open,
		High:         high,
		Low:          low,
		Close:        closePx,
		Volume:       volume,
	}

	prevRow, prevFound := findSymbol(prevDay, symbol)
	res.DailyStatus, res.PrevDayHigh, res.PrevDayLow = classifyDaily(closePx, ldcp, prevRow, prevFound)
	res.WeeklyStatus, res.WeeklyHigh, res.WeeklyLow = classifyWindow(closePx, weekly, symbol)
	res.MonthlyStatus, res.MonthlyHigh, res.MonthlyLow = classifyWindow(closePx, monthly, symbol)
	res.CircuitBreaker = c.classifyCircuitBreaker(closePx, prevRow, prevFound)

	return res, true
}

// findSymbol returns the first row matching the symbol (case-insensitive).
func findSymbol(rows []model.Quote, symbol string) (model.Quote, bool) {
	for _, r := range rows {
		if model.CanonicalSymbol(r.Symbol) == symbol {
			return r, true
		}
	}
	return model.Quote{}, false
}

// classifyDaily compares today's close against the previous trading day's
// high/low. When no previous-day row exists, or its high/low are
// unparseable, it falls back to comparing close against LDCP, which is
// always present on an admitted today-row. The fallback leaves the extrema
// null so a report reader can tell it apart from a real one-price range.
func classifyDaily(closePx, ldcp decimal.Decimal, prev model.Quote, found bool) (model.PeriodStatus, decimal.NullDecimal, decimal.NullDecimal) {
	if found {
		high, hok := ParseDecimal(prev.High)
		low, lok := ParseDecimal(prev.Low)
		if hok && lok {
			nh := decimal.NewNullDecimal(high)
			nl := decimal.NewNullDecimal(low)
			switch {
			case closePx.GreaterThan(high):
				return model.StatusBreakout, nh, nl
			case closePx.LessThan(low):
				return model.StatusBreakdown, nh, nl
			default:
				return model.StatusWithinRange, nh, nl
			}
		}
	}
	var none decimal.NullDecimal
	switch {
	case closePx.GreaterThan(ldcp):
		return model.StatusBreakout, none, none
	case closePx.LessThan(ldcp):
		return model.StatusBreakdown, none, none
	default:
		return model.StatusWithinRange, none, none
	}
}

// classifyWindow aggregates the window's high/low for the symbol and
// compares today's close against them. Rows with unparseable high/low are
// excluded from aggregation rather than defaulting to zero; a window with
// rows but no usable high/low pair reports DataError, a window with no
// rows at all reports Unavailable. There is no fallback for windows.
func classifyWindow(closePx decimal.Decimal, window []model.Quote, symbol string) (model.PeriodStatus, decimal.NullDecimal, decimal.NullDecimal) {
	var (
		high, low decimal.Decimal
		hasHigh   bool
		hasLow    bool
		matched   bool
	)
	for _, r := range window {
		if model.CanonicalSymbol(r.Symbol) != symbol {
			continue
		}
		matched = true
		if h, ok := ParseDecimal(r.High); ok {
			if !hasHigh || h.GreaterThan(high) {
				high = h
				hasHigh = true
			}
		}
		if l, ok := ParseDecimal(r.Low); ok {
			if !hasLow || l.LessThan(low) {
				low = l
				hasLow = true
			}
		}
	}
	if !matched {
		return model.StatusUnavailable, decimal.NullDecimal{}, decimal.NullDecimal{}
	}
	if !hasHigh || !hasLow {
		return model.StatusDataError, decimal.NullDecimal{}, decimal.NullDecimal{}
	}
	nh := decimal.NewNullDecimal(high)
	nl := decimal.NewNullDecimal(low)
	switch {
	case closePx.GreaterThan(high):
		return model.StatusBreakout, nh, nl
	case closePx.LessThan(low):
		return model.StatusBreakdown, nh, nl
	default:
		return model.StatusWithinRange, nh, nl
	}
}

// classifyCircuitBreaker checks today's move against the PSX limit:
// max(rs floor, previous close * pct / 100). It requires a previous-day
// row with a parseable close; otherwise the check cannot run.
func (c *Classifier) classifyCircuitBreaker(closePx decimal.Decimal, prev model.Quote, found bool) model.CircuitStatus {
	if !found {
		return model.CircuitUnavailable
	}
	prevClose, ok := ParseDecimal(prev.Close)
	if !ok {
		return model.CircuitUnavailable
	}
	limit := decimal.Max(c.cfg.CircuitBreakerRsLimit,
		prevClose.Mul(c.cfg.CircuitBreakerPct).Div(decimal.NewFromInt(100)))
	change := closePx.Sub(prevClose)
	switch {
	case change.GreaterThan(limit):
		return model.CircuitUpper
	case change.LessThan(limit.Neg()):
		return model.CircuitLower
	default:
		return model.CircuitNormal
	}
}
