package dataset

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"adpulse/domain/creative"
	"adpulse/domain/plan"
	"adpulse/ports"
)

// Record is one parsed ad performance row.
type Record struct {
	Date            time.Time
	Campaign        string
	Adset           string
	Impressions     float64
	Clicks          float64
	Spend           float64
	Purchases       float64
	Revenue         float64
	CreativeType    string
	CreativeMessage string
	CTR             float64
	ROAS            float64
}

// Dataset is an in-memory ad performance dataset. It satisfies
// ports.TimeSeriesPort. Records are held sorted by date ascending.
type Dataset struct {
	records []Record
	rec     ports.Recorder
}

var dateLayouts = []string{"2006-01-02", "2006-01-02 15:04:05", "01/02/2006", time.RFC3339}

// Load reads and parses a CSV or Excel dataset file. Rows with an
// unparseable date are skipped with a warning rather than failing the load.
func Load(path string, rec ports.Recorder) (*Dataset, error) {
	if rec == nil {
		rec = ports.NopRecorder{}
	}

	data, err := NewReader(path).ReadData()
	if err != nil {
		return nil, err
	}

	records := make([]Record, 0, len(data.Rows))
	skipped := 0
	for _, row := range data.Rows {
		date, ok := parseDate(row["date"])
		if !ok {
			skipped++
			continue
		}
		r := Record{
			Date:            date,
			Campaign:        row["campaign_name"],
			Adset:           row["adset_name"],
			Impressions:     parseFloat(row["impressions"]),
			Clicks:          parseFloat(row["clicks"]),
			Spend:           parseFloat(row["spend"]),
			Purchases:       parseFloat(row["purchases"]),
			Revenue:         parseFloat(row["revenue"]),
			CreativeType:    row["creative_type"],
			CreativeMessage: row["creative_message"],
			CTR:             parseFloat(row["ctr"]),
			ROAS:            parseFloat(row["roas"]),
		}
		// Derive ratio metrics when the file does not carry them.
		if r.CTR == 0 && r.Impressions > 0 {
			r.CTR = r.Clicks / r.Impressions
		}
		if r.ROAS == 0 && r.Spend > 0 {
			r.ROAS = r.Revenue / r.Spend
		}
		records = append(records, r)
	}
	if skipped > 0 {
		rec.Warn("dataset: skipped %d rows with unparseable dates in %s", skipped, path)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("dataset %s contains no usable rows", path)
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Date.Before(records[j].Date)
	})

	rec.Info("dataset: loaded %d records from %s", len(records), path)
	return &Dataset{records: records, rec: rec}, nil
}

// NewFromRecords builds a dataset directly from records, sorting by date.
func NewFromRecords(records []Record, rec ports.Recorder) *Dataset {
	if rec == nil {
		rec = ports.NopRecorder{}
	}
	sorted := make([]Record, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})
	return &Dataset{records: sorted, rec: rec}
}

// Series returns the daily mean of metric, oldest day first, filtered to
// one campaign unless scope means all campaigns.
func (d *Dataset) Series(ctx context.Context, scope, metric string) ([]float64, error) {
	if len(d.records) == 0 {
		return nil, &ports.SeriesError{Reason: ports.SeriesMissing, Scope: scope, Metric: metric}
	}

	value, ok := metricAccessor(metric)
	if !ok {
		return nil, &ports.SeriesError{Reason: ports.SeriesMetricNotFound, Scope: scope, Metric: metric}
	}

	filterAll := scope == "" || scope == "all" || scope == plan.ScopeAllCampaigns

	type bucket struct {
		sum float64
		n   int
	}
	byDay := make(map[string]*bucket)
	days := make([]string, 0)
	for _, r := range d.records {
		if !filterAll && r.Campaign != scope {
			continue
		}
		day := r.Date.Format("2006-01-02")
		b, seen := byDay[day]
		if !seen {
			b = &bucket{}
			byDay[day] = b
			days = append(days, day)
		}
		b.sum += value(r)
		b.n++
	}
	if len(days) == 0 {
		return nil, &ports.SeriesError{Reason: ports.SeriesEmpty, Scope: scope, Metric: metric}
	}

	sort.Strings(days)
	series := make([]float64, len(days))
	for i, day := range days {
		b := byDay[day]
		series[i] = b.sum / float64(b.n)
	}
	return series, nil
}

// CreativesSample returns up to n creatives deduplicated by message text,
// in dataset order.
func (d *Dataset) CreativesSample(ctx context.Context, n int) ([]creative.Sample, error) {
	if len(d.records) == 0 {
		return nil, fmt.Errorf("no dataset loaded")
	}

	seen := make(map[string]struct{})
	samples := make([]creative.Sample, 0, n)
	for _, r := range d.records {
		if r.CreativeMessage == "" {
			continue
		}
		key := strings.ToLower(strings.TrimSpace(r.CreativeMessage))
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		samples = append(samples, creative.Sample{
			Campaign:     r.Campaign,
			AdsetName:    r.Adset,
			CreativeType: r.CreativeType,
			Message:      r.CreativeMessage,
			CTR:          r.CTR,
		})
		if len(samples) >= n {
			break
		}
	}
	return samples, nil
}

// Summary produces the lightweight digest handed to generators.
func (d *Dataset) Summary() ports.DatasetSummary {
	s := ports.DatasetSummary{Rows: len(d.records)}
	if len(d.records) == 0 {
		return s
	}

	s.DateMin = d.records[0].Date.Format("2006-01-02")
	s.DateMax = d.records[len(d.records)-1].Date.Format("2006-01-02")

	spendByCampaign := make(map[string]float64)
	for _, r := range d.records {
		if r.Campaign != "" {
			spendByCampaign[r.Campaign] += r.Spend
		}
	}
	s.CampaignCount = len(spendByCampaign)

	type cs struct {
		name  string
		spend float64
	}
	ranked := make([]cs, 0, len(spendByCampaign))
	for name, spend := range spendByCampaign {
		ranked = append(ranked, cs{name, spend})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].spend != ranked[j].spend {
			return ranked[i].spend > ranked[j].spend
		}
		return ranked[i].name < ranked[j].name
	})
	if len(ranked) > 5 {
		ranked = ranked[:5]
	}
	s.TopCampaignsBySpend = make(map[string]float64, len(ranked))
	for _, c := range ranked {
		s.TopCampaignsBySpend[c.name] = c.spend
	}
	return s
}

// Records exposes the parsed rows, primarily for reporting.
func (d *Dataset) Records() []Record {
	return d.records
}

func metricAccessor(metric string) (func(Record) float64, bool) {
	switch strings.ToLower(metric) {
	case "ctr":
		return func(r Record) float64 { return r.CTR }, true
	case "roas":
		return func(r Record) float64 { return r.ROAS }, true
	case "spend":
		return func(r Record) float64 { return r.Spend }, true
	case "clicks":
		return func(r Record) float64 { return r.Clicks }, true
	case "impressions":
		return func(r Record) float64 { return r.Impressions }, true
	case "purchases":
		return func(r Record) float64 { return r.Purchases }, true
	case "revenue":
		return func(r Record) float64 { return r.Revenue }, true
	default:
		return nil, false
	}
}

func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func parseFloat(s string) float64 {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}
