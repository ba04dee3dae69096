package classifier

import (
	"testing"
	"time"

	"psxscan/internal/model"
)

var testDay = time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC)

// quote builds a fully-parseable today row.
func quote(symbol, ldcp, open, high, low, closePx, volume string) model.Quote {
	return model.Quote{
		Symbol: symbol,
		Date:   testDay,
		LDCP:   ldcp,
		Open:   open,
		High:   high,
		Low:    low,
		Close:  closePx,
		Volume: volume,
	}
}

func metaFor(symbols ...string) model.MetadataMap {
	m := model.MetadataMap{}
	for _, s := range symbols {
		canon := model.CanonicalSymbol(s)
		m[canon] = model.Metadata{CompanyName: canon + " Ltd", Sector: "Test", KMICompliant: false}
	}
	return m
}

func classifyOne(t *testing.T, today model.Quote, prevDay, weekly, monthly []model.Quote) model.ClassificationResult {
	t.Helper()
	c := New(Config{})
	results := c.Classify([]model.Quote{today}, prevDay, weekly, monthly, metaFor(today.Symbol))
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	return results[0]
}

func TestDaily_LDCPFallbackBreakout(t *testing.T) {
	// No previous-day row found: close 105 vs LDCP 100 is a breakout.
	res := classifyOne(t, quote("ABC", "100", "101", "106", "100", "105", "1000"), nil, nil, nil)
	if res.DailyStatus != model.StatusBreakout {
		t.Errorf("daily = %s, want breakout via LDCP fallback", res.DailyStatus)
	}
	// The fallback must not masquerade as a real prev-day range.
	if res.PrevDayHigh.Valid || res.PrevDayLow.Valid {
		t.Errorf("fallback should leave extrema null, got [%+v/%+v]", res.PrevDayHigh, res.PrevDayLow)
	}
}

func TestDaily_WithinRangeAgainstPrevDay(t *testing.T) {
	prev := []model.Quote{quote("ABC", "49", "50", "55", "48", "52", "900")}
	res := classifyOne(t, quote("ABC", "52", "50", "51", "49", "50", "1000"), prev, nil, nil)
	if res.DailyStatus != model.StatusWithinRange {
		t.Errorf("daily = %s, want within range (48 <= 50 <= 55)", res.DailyStatus)
	}
	if !res.PrevDayHigh.Valid || res.PrevDayHigh.Decimal.String() != "55" {
		t.Errorf("prev day high = %+v, want 55", res.PrevDayHigh)
	}
}

func TestDaily_ExactHighIsWithinRange(t *testing.T) {
	// Strict inequality required for breakout.
	prev := []model.Quote{quote("ABC", "49", "50", "55", "48", "52", "900")}
	res := classifyOne(t, quote("ABC", "52", "50", "55", "49", "55", "1000"), prev, nil, nil)
	if res.DailyStatus != model.StatusWithinRange {
		t.Errorf("daily = %s, want within range when close equals prev high", res.DailyStatus)
	}
}

func TestDaily_BreakdownAgainstPrevDay(t *testing.T) {
	prev := []model.Quote{quote("ABC", "49", "50", "55", "48", "52", "900")}
	res := classifyOne(t, quote("ABC", "52", "48", "48", "45", "47", "1000"), prev, nil, nil)
	if res.DailyStatus != model.StatusBreakdown {
		t.Errorf("daily = %s, want breakdown (47 < 48)", res.DailyStatus)
	}
}

func TestDaily_MalformedPrevRowFallsBackToLDCP(t *testing.T) {
	prev := []model.Quote{quote("ABC", "49", "50", "N/A", "-", "52", "900")}
	res := classifyOne(t, quote("ABC", "100", "101", "106", "100", "99", "1000"), prev, nil, nil)
	if res.DailyStatus != model.StatusBreakdown {
		t.Errorf("daily = %s, want breakdown via LDCP fallback (99 < 100)", res.DailyStatus)
	}
	if res.PrevDayHigh.Valid || res.PrevDayLow.Valid {
		t.Errorf("fallback over a malformed row should leave extrema null, got [%+v/%+v]", res.PrevDayHigh, res.PrevDayLow)
	}
}

func TestWeekly_BreakoutAboveWindowHigh(t *testing.T) {
	weekly := []model.Quote{
		quote("XYZ", "58", "59", "60", "57", "59", "100"),
		quote("XYZ", "59", "60", "62", "58", "61", "100"),
		quote("XYZ", "61", "59", "58", "56", "57", "100"),
	}
	res := classifyOne(t, quote("XYZ", "61", "62", "66", "61", "65", "1000"), nil, weekly, nil)
	if res.WeeklyStatus != model.StatusBreakout {
		t.Errorf("weekly = %s, want breakout (65 > max high 62)", res.WeeklyStatus)
	}
	if !res.WeeklyHigh.Valid || res.WeeklyHigh.Decimal.String() != "62" {
		t.Errorf("weekly high = %+v, want 62", res.WeeklyHigh)
	}
	if !res.WeeklyLow.Valid || res.WeeklyLow.Decimal.String() != "56" {
		t.Errorf("weekly low = %+v, want 56", res.WeeklyLow)
	}
}

func TestWeekly_UnavailableWhenNoRows(t *testing.T) {
	weekly := []model.Quote{quote("OTHER", "1", "1", "1", "1", "1", "1")}
	res := classifyOne(t, quote("XYZ", "61", "62", "66", "61", "65", "1000"), nil, weekly, nil)
	if res.WeeklyStatus != model.StatusUnavailable {
		t.Errorf("weekly = %s, want unavailable when symbol has no window rows", res.WeeklyStatus)
	}
	if res.WeeklyHigh.Valid || res.WeeklyLow.Valid {
		t.Error("weekly extrema should be null when window is unavailable")
	}
}

func TestWeekly_DataErrorWhenRowsUnusable(t *testing.T) {
	// Rows exist for the symbol but no high/low parses: DataError, and the
	// unparseable lows must not read as zero and fake a breakout.
	weekly := []model.Quote{
		quote("XYZ", "58", "59", "N/A", "-", "59", "100"),
		quote("XYZ", "59", "60", "", "", "61", "100"),
	}
	res := classifyOne(t, quote("XYZ", "61", "62", "66", "61", "65", "1000"), nil, weekly, nil)
	if res.WeeklyStatus != model.StatusDataError {
		t.Errorf("weekly = %s, want data error for unusable rows", res.WeeklyStatus)
	}
}

func TestWeekly_UnparseableRowsExcludedFromAggregation(t *testing.T) {
	weekly := []model.Quote{
		quote("XYZ", "58", "59", "60", "57", "59", "100"),
		quote("XYZ", "59", "60", "N/A", "-", "61", "100"), // ignored, not zeroed
	}
	res := classifyOne(t, quote("XYZ", "61", "60", "60", "55", "56", "1000"), nil, weekly, nil)
	if res.WeeklyStatus != model.StatusBreakdown {
		t.Errorf("weekly = %s, want breakdown (56 < 57); a zero-defaulted low would mask it", res.WeeklyStatus)
	}
}

func TestMonthly_Symmetric(t *testing.T) {
	monthly := []model.Quote{
		quote("XYZ", "40", "41", "45", "39", "44", "100"),
		quote("XYZ", "44", "44", "47", "43", "46", "100"),
	}
	res := classifyOne(t, quote("XYZ", "46", "45", "46", "37", "38", "1000"), nil, nil, monthly)
	if res.MonthlyStatus != model.StatusBreakdown {
		t.Errorf("monthly = %s, want breakdown (38 < min low 39)", res.MonthlyStatus)
	}
}

func TestCircuitBreaker_Upper(t *testing.T) {
	// prev close 100, limit max(1, 7.5) = 7.5; change 8.5 breaches upward.
	prev := []model.Quote{quote("ABC", "99", "100", "101", "99", "100", "900")}
	res := classifyOne(t, quote("ABC", "100", "101", "109", "100", "108.5", "1000"), prev, nil, nil)
	if res.CircuitBreaker != model.CircuitUpper {
		t.Errorf("circuit = %s, want upper (8.5 > 7.5)", res.CircuitBreaker)
	}
}

func TestCircuitBreaker_Lower(t *testing.T) {
	prev := []model.Quote{quote("ABC", "99", "100", "101", "99", "100", "900")}
	res := classifyOne(t, quote("ABC", "100", "95", "95", "90", "91", "1000"), prev, nil, nil)
	if res.CircuitBreaker != model.CircuitLower {
		t.Errorf("circuit = %s, want lower (-9 < -7.5)", res.CircuitBreaker)
	}
}

func TestCircuitBreaker_NormalDistinctFromUnavailable(t *testing.T) {
	prev := []model.Quote{quote("ABC", "99", "100", "101", "99", "100", "900")}
	res := classifyOne(t, quote("ABC", "100", "101", "106", "100", "105", "1000"), prev, nil, nil)
	if res.CircuitBreaker != model.CircuitNormal {
		t.Errorf("circuit = %s, want normal (5 within 7.5 limit)", res.CircuitBreaker)
	}

	res = classifyOne(t, quote("ABC", "100", "101", "106", "100", "105", "1000"), nil, nil, nil)
	if res.CircuitBreaker != model.CircuitUnavailable {
		t.Errorf("circuit = %s, want unavailable without a previous close", res.CircuitBreaker)
	}
}

func TestCircuitBreaker_RupeeFloorDominatesAtLowPrices(t *testing.T) {
	// prev close 10: percentage limit 0.75 is below the Rs 1 floor.
	prev := []model.Quote{quote("PENNY", "10", "10", "10.2", "9.9", "10", "900")}
	c := New(Config{})
	results := c.Classify([]model.Quote{quote("PENNY", "10", "10.1", "11.6", "10", "11.5", "1000")},
		prev, nil, nil, metaFor("PENNY"))
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].CircuitBreaker != model.CircuitUpper {
		t.Errorf("circuit = %s, want upper (1.5 > floor 1)", results[0].CircuitBreaker)
	}
}

func TestEligibility_FuturesSuffixExcluded(t *testing.T) {
	c := New(Config{})
	today := []model.Quote{
		quote("ABC", "100", "101", "106", "100", "105", "1000"),
		quote("ABC-DEC", "100", "101", "106", "100", "105", "1000"),
	}
	results := c.Classify(today, nil, nil, nil, metaFor("ABC", "ABC-DEC"))
	if len(results) != 1 || results[0].Symbol != "ABC" {
		t.Fatalf("futures contract should be excluded even when in metadata, got %+v", results)
	}
}

func TestEligibility_MissingMetadataExcluded(t *testing.T) {
	c := New(Config{})
	today := []model.Quote{quote("UNKNOWN", "100", "101", "106", "100", "105", "1000")}
	results := c.Classify(today, nil, nil, nil, metaFor("ABC"))
	if len(results) != 0 {
		t.Fatalf("symbol absent from metadata should be excluded, got %+v", results)
	}
}

func TestClassify_SkipsRowWithMalformedRequiredField(t *testing.T) {
	c := New(Config{})
	today := []model.Quote{
		quote("GOOD", "100", "101", "106", "100", "105", "1000"),
		quote("BAD", "100", "101", "106", "100", "N/A", "1000"), // close unparseable
	}
	results := c.Classify(today, nil, nil, nil, metaFor("GOOD", "BAD"))
	if len(results) != 1 || results[0].Symbol != "GOOD" {
		t.Fatalf("row with malformed close should be skipped, got %+v", results)
	}
}

func TestClassify_EmptySnapshotYieldsEmptyResults(t *testing.T) {
	c := New(Config{})
	results := c.Classify(nil, nil, nil, nil, metaFor("ABC"))
	if len(results) != 0 {
		t.Fatalf("empty snapshot should yield empty results, got %d", len(results))
	}
}

func TestClassify_PreservesInputOrderAndIsIdempotent(t *testing.T) {
	c := New(Config{})
	today := []model.Quote{
		quote("ZULU", "10", "10", "11", "9", "10", "100"),
		quote("ALPHA", "20", "20", "21", "19", "20", "200"),
		quote("MIKE", "30", "30", "31", "29", "30", "300"),
	}
	meta := metaFor("ZULU", "ALPHA", "MIKE")

	first := c.Classify(today, nil, nil, nil, meta)
	second := c.Classify(today, nil, nil, nil, meta)

	want := []string{"ZULU", "ALPHA", "MIKE"}
	if len(first) != len(want) {
		t.Fatalf("expected %d results, got %d", len(want), len(first))
	}
	for i, sym := range want {
		if first[i].Symbol != sym {
			t.Errorf("result[%d] = %s, want %s (input order)", i, first[i].Symbol, sym)
		}
	}
	if len(second) != len(first) {
		t.Fatalf("second run returned %d results, want %d", len(second), len(first))
	}
	for i := range first {
		if first[i].Symbol != second[i].Symbol ||
			first[i].DailyStatus != second[i].DailyStatus ||
			first[i].WeeklyStatus != second[i].WeeklyStatus ||
			first[i].MonthlyStatus != second[i].MonthlyStatus ||
			first[i].CircuitBreaker != second[i].CircuitBreaker {
			t.Errorf("result[%d] differs between identical runs", i)
		}
	}
}

func TestClassify_MetadataEchoedWithDefaults(t *testing.T) {
	c := New(Config{})
	meta := model.MetadataMap{"ABC": {}} // present, but empty fields
	results := c.Classify([]model.Quote{quote("ABC", "100", "101", "106", "100", "105", "1000")},
		nil, nil, nil, meta)
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].CompanyName != "ABC" || results[0].Sector != "N/A" {
		t.Errorf("defaults not applied: company=%q sector=%q", results[0].CompanyName, results[0].Sector)
	}
}

func TestClassify_CaseInsensitiveSymbolMatch(t *testing.T) {
	prev := []model.Quote{quote("abc", "49", "50", "55", "48", "52", "900")}
	res := classifyOne(t, quote(" Abc ", "52", "50", "51", "49", "50", "1000"), prev, nil, nil)
	if res.Symbol != "ABC" {
		t.Errorf("symbol = %q, want canonical ABC", res.Symbol)
	}
	if res.DailyStatus != model.StatusWithinRange {
		t.Errorf("daily = %s, want within range via case-insensitive prev-day match", res.DailyStatus)
	}
}
