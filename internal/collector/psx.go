package collector

import (
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"psxscan/internal/model"
)

// PSXFetcher implements Fetcher against the PSX data portal: the live
// market-watch page for today's snapshot and metadata, and the closing
// rates CSV download for historical dates.
type PSXFetcher struct {
	BaseURL string
	Client  *http.Client
}

// NewPSXFetcher creates a fetcher with optional proxy support.
func NewPSXFetcher(baseURL, proxyURL string) *PSXFetcher {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &PSXFetcher{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
	}
}

func (f *PSXFetcher) Name() string { return "psx" }

// Market-watch table column positions.
const (
	colSymbol = iota
	colSector
	colListedIn
	colLDCP
	colOpen
	colHigh
	colLow
	colCurrent
	colChange
	colChangePct
	colVolume
	marketWatchCols
)

// FetchToday scrapes the market-watch page for the full-market snapshot.
func (f *PSXFetcher) FetchToday() ([]model.Quote, error) {
	doc, err := f.fetchMarketWatch()
	if err != nil {
		return nil, err
	}

	today := time.Now()
	var quotes []model.Quote
	doc.Find("table tbody tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < marketWatchCols {
			return
		}
		symbol := model.CanonicalSymbol(cells.Eq(colSymbol).Find("strong").First().Text())
		if symbol == "" {
			symbol = model.CanonicalSymbol(cells.Eq(colSymbol).Text())
		}
		if symbol == "" {
			return
		}
		quotes = append(quotes, model.Quote{
			Symbol: symbol,
			Date:   today,
			LDCP:   strings.TrimSpace(cells.Eq(colLDCP).Text()),
			Open:   strings.TrimSpace(cells.Eq(colOpen).Text()),
			High:   strings.TrimSpace(cells.Eq(colHigh).Text()),
			Low:    strings.TrimSpace(cells.Eq(colLow).Text()),
			Close:  strings.TrimSpace(cells.Eq(colCurrent).Text()),
			Volume: strings.TrimSpace(cells.Eq(colVolume).Text()),
		})
	})
	if len(quotes) == 0 {
		return nil, fmt.Errorf("market watch: no rows parsed from %s", f.BaseURL)
	}
	return quotes, nil
}

// FetchMetadata scrapes company name, sector and index membership from the
// market-watch page. A symbol is KMI compliant when its "listed in" cell
// names a KMI index.
func (f *PSXFetcher) FetchMetadata() (model.MetadataMap, error) {
	doc, err := f.fetchMarketWatch()
	if err != nil {
		return nil, err
	}

	meta := model.MetadataMap{}
	doc.Find("table tbody tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < marketWatchCols {
			return
		}
		symbolCell := cells.Eq(colSymbol)
		symbol := model.CanonicalSymbol(symbolCell.Find("strong").First().Text())
		if symbol == "" {
			symbol = model.CanonicalSymbol(symbolCell.Text())
		}
		if symbol == "" {
			return
		}
		name := strings.TrimSpace(symbolCell.Find("a").First().AttrOr("title", ""))
		if name == "" {
			name = symbol
		}
		meta[symbol] = model.Metadata{
			CompanyName:  name,
			Sector:       strings.TrimSpace(cells.Eq(colSector).Text()),
			KMICompliant: strings.Contains(strings.ToUpper(cells.Eq(colListedIn).Text()), "KMI"),
		}
	})
	if len(meta) == 0 {
		return nil, fmt.Errorf("market watch: no metadata rows parsed from %s", f.BaseURL)
	}
	return meta, nil
}

func (f *PSXFetcher) fetchMarketWatch() (*goquery.Document, error) {
	endpoint := f.BaseURL + "/market-watch"
	req, err := http.NewRequest("GET", endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")
	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch market watch: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch market watch: status %d", resp.StatusCode)
	}
	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse market watch: %w", err)
	}
	return doc, nil
}

// FetchByDate downloads the closing rates CSV for a past date. Header
// columns are matched by name so column reordering on the portal side
// does not break parsing.
func (f *PSXFetcher) FetchByDate(date time.Time) ([]model.Quote, error) {
	endpoint := f.BaseURL + "/download/closing_rates"
	form := url.Values{"date": {date.Format("2006-01-02")}}
	req, err := http.NewRequest("POST", endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch closing rates: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("fetch closing rates: status %d, body: %s", resp.StatusCode, string(body))
	}
	return parseClosingRatesCSV(resp.Body, date)
}

func parseClosingRatesCSV(r io.Reader, date time.Time) ([]model.Quote, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil // no trading on this date
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	idx := make(map[string]int, len(header))
	for i, col := range header {
		idx[model.CanonicalSymbol(col)] = i
	}
	symCol, ok := idx["SYMBOL"]
	if !ok {
		return nil, fmt.Errorf("closing rates csv: no SYMBOL column in header %v", header)
	}
	field := func(record []string, name string) string {
		i, ok := idx[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	var quotes []model.Quote
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv record: %w", err)
		}
		if symCol >= len(record) {
			continue
		}
		symbol := model.CanonicalSymbol(record[symCol])
		if symbol == "" {
			continue
		}
		quotes = append(quotes, model.Quote{
			Symbol: symbol,
			Date:   date,
			LDCP:   field(record, "LDCP"),
			Open:   field(record, "OPEN"),
			High:   field(record, "HIGH"),
			Low:    field(record, "LOW"),
			Close:  field(record, "CLOSE"),
			Volume: field(record, "VOLUME"),
		})
	}
	return quotes, nil
}
