package pipeline

import (
	"bufio"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"math/rand"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go-quality-pipeline/internal/model"
	"go-quality-pipeline/internal/record"
	"go-quality-pipeline/pkg/utils"
)

// Ingestor produces the raw record set for a source
type Ingestor interface {
	Ingest(ctx context.Context, source model.DataSource) (record.Set, error)
}

// IngestorFunc adapts a function to Ingestor
type IngestorFunc func(ctx context.Context, source model.DataSource) (record.Set, error)

func (f IngestorFunc) Ingest(ctx context.Context, source model.DataSource) (record.Set, error) {
	return f(ctx, source)
}

// ------------------- Simulated Plant Data -------------------

var (
	plants   = []string{"Plant_ATL", "Plant_NYC", "Plant_CHI", "Plant_LA", "Plant_MIA"}
	products = []string{"Product_A", "Product_B", "Product_C", "Product_D", "Product_E"}
)

// SimulatedIngestor generates manufacturing plant telemetry with a small
// share of injected quality issues: about 5% missing quality_score and 3%
// out-of-range temperature.
type SimulatedIngestor struct {
	Records int
	// Seed fixes the generator for reproducible output; 0 draws a fresh seed per call.
	Seed int64
	Now  func() time.Time
}

func (s SimulatedIngestor) Ingest(ctx context.Context, _ model.DataSource) (record.Set, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	n := s.Records
	if n <= 0 {
		n = 100
	}
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	seed := s.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return GeneratePlantData(rand.New(rand.NewSource(seed)), n, now().UTC()), nil
}

// GeneratePlantData builds n hourly readings starting seven days before now
func GeneratePlantData(rng *rand.Rand, n int, now time.Time) record.Set {
	base := now.Add(-7 * 24 * time.Hour)
	uniform := func(lo, hi float64, places int) float64 {
		p := math.Pow(10, float64(places))
		return math.Round((lo+rng.Float64()*(hi-lo))*p) / p
	}

	out := make(record.Set, 0, n)
	for i := 0; i < n; i++ {
		rec := record.Record{
			"record_id":         fmt.Sprintf("REC_%06d", i),
			"plant_id":          plants[rng.Intn(len(plants))],
			"product":           products[rng.Intn(len(products))],
			"production_volume": uniform(5000, 15000, 2),
			"quality_score":     uniform(85, 100, 2),
			"downtime_minutes":  rng.Intn(121),
			"batch_id":          fmt.Sprintf("BATCH_%d", 1000+rng.Intn(9000)),
			"temperature":       uniform(2, 8, 1),
			"ph_level":          uniform(2.8, 3.5, 2),
			"timestamp":         base.Add(time.Duration(i) * time.Hour).Format(time.RFC3339),
			"operator_id":       fmt.Sprintf("OP_%d", 100+rng.Intn(900)),
		}
		if rng.Float64() < 0.05 {
			rec["quality_score"] = nil
		}
		if rng.Float64() < 0.03 {
			rec["temperature"] = uniform(15, 25, 1)
		}
		out = append(out, rec)
	}
	return out
}

// ------------------- File / URL Sources -------------------

// FileIngestor reads CSV, JSON or JSON-lines records from a local path or an
// http(s) URL named by the source's config["path"] or config["url"]. The
// format comes from config["format"] or the file extension.
type FileIngestor struct {
	Client *http.Client
}

// ErrNoLocation is returned when a file source names no path or url
var ErrNoLocation = errors.New("source config has no path or url")

func (f FileIngestor) Ingest(ctx context.Context, source model.DataSource) (record.Set, error) {
	loc := sourceLocation(source)
	if loc == "" {
		return nil, ErrNoLocation
	}
	format, _ := source.Config["format"].(string)
	if format == "" {
		format = strings.TrimPrefix(strings.ToLower(filepath.Ext(loc)), ".")
	}

	rc, err := f.open(ctx, loc)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	switch strings.ToLower(format) {
	case "csv":
		return readCSV(ctx, rc)
	case "json":
		return readJSON(rc)
	case "jsonl", "ndjson":
		return readJSONLines(ctx, rc)
	default:
		return nil, fmt.Errorf("unknown source format %q for %s", format, loc)
	}
}

func sourceLocation(source model.DataSource) string {
	for _, key := range []string{"path", "url"} {
		if s, ok := source.Config[key].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

func (f FileIngestor) open(ctx context.Context, loc string) (io.ReadCloser, error) {
	if !strings.HasPrefix(loc, "http://") && !strings.HasPrefix(loc, "https://") {
		file, err := os.Open(loc)
		if err != nil {
			return nil, fmt.Errorf("failed to open source file: %w", err)
		}
		return file, nil
	}

	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, loc, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to GET %s: %w", loc, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("GET %s: unexpected status %s", loc, resp.Status)
	}
	return resp.Body, nil
}

func readCSV(ctx context.Context, r io.Reader) (record.Set, error) {
	csvReader := csv.NewReader(r)
	csvReader.LazyQuotes = true
	headers, err := csvReader.Read()
	if err == io.EOF {
		return record.Set{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	for i, h := range headers {
		headers[i] = strings.ReplaceAll(strings.TrimSpace(h), `"`, "")
	}

	out := make(record.Set, 0)
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		row, err := csvReader.Read()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("CSV read error: %w", err)
		}
		rec := make(record.Record, len(headers))
		for i, h := range headers {
			if i < len(row) {
				rec[h] = utils.ParseValue(row[i])
			} else {
				rec[h] = nil
			}
		}
		out = append(out, rec)
	}
}

func readJSON(r io.Reader) (record.Set, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	var raw interface{}
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to decode JSON: %w", err)
	}

	switch data := raw.(type) {
	case []interface{}:
		out := make(record.Set, 0, len(data))
		for _, item := range data {
			m, ok := item.(map[string]interface{})
			if !ok {
				return nil, fmt.Errorf("unexpected JSON element %T", item)
			}
			out = append(out, record.FromMap(m))
		}
		return out, nil
	case map[string]interface{}:
		return record.Set{record.FromMap(data)}, nil
	default:
		return nil, fmt.Errorf("unexpected JSON structure")
	}
}

func readJSONLines(ctx context.Context, r io.Reader) (record.Set, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)
	out := make(record.Set, 0)
	line := 0
	for scanner.Scan() {
		line++
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		dec := json.NewDecoder(strings.NewReader(text))
		dec.UseNumber()
		var m map[string]interface{}
		if err := dec.Decode(&m); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		out = append(out, record.FromMap(m))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read JSON lines: %w", err)
	}
	return out, nil
}

// ------------------- Dispatch -------------------

// SourceIngestor routes sources with a configured path or url to Files and
// everything else to Simulated.
type SourceIngestor struct {
	Simulated Ingestor
	Files     Ingestor
}

func (s SourceIngestor) Ingest(ctx context.Context, source model.DataSource) (record.Set, error) {
	if sourceLocation(source) != "" || source.Type == "file" {
		if s.Files == nil {
			return nil, fmt.Errorf("no file ingestor for source %s", source.ID)
		}
		return s.Files.Ingest(ctx, source)
	}
	if s.Simulated == nil {
		return nil, fmt.Errorf("no ingestor for source type %q", source.Type)
	}
	return s.Simulated.Ingest(ctx, source)
}
