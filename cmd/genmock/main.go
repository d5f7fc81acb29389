// Command genmock reads a traffic CSV and generates the fixtures the service
// and its tests read: the sunburst hierarchy JSON derived from the CSV and,
// optionally, a sample CSV holding the first N rows.
//
// Usage:
//
//	go run ./cmd/genmock \
//	  -csv data/output_data.csv \
//	  -hierarchy-out data/hierarchical_traffic_data.json \
//	  -sample-out internal/dataset/testdata/sample.csv -sample-rows 200
package main

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/madu12/metro-interstate-traffic-volume/internal/aggregate"
	"github.com/madu12/metro-interstate-traffic-volume/internal/dataset"
	"github.com/madu12/metro-interstate-traffic-volume/internal/domain"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	csvPath := flag.String("csv", "", "traffic CSV to read")
	hierarchyOut := flag.String("hierarchy-out", "", "output path for the hierarchy JSON")
	sampleOut := flag.String("sample-out", "", "output path for the sample CSV (optional)")
	sampleRows := flag.Int("sample-rows", 100, "data rows copied into the sample CSV")
	rootName := flag.String("root", "Traffic", "name of the hierarchy root")
	tz := flag.String("tz", "UTC", "time zone of timestamps without an offset")
	flag.Parse()

	if *csvPath == "" || *hierarchyOut == "" {
		flag.Usage()
		return errors.New("missing required flags: -csv, -hierarchy-out")
	}

	loc, err := time.LoadLocation(*tz)
	if err != nil {
		return fmt.Errorf("load time zone: %w", err)
	}

	raw, err := os.ReadFile(*csvPath)
	if err != nil {
		return fmt.Errorf("read csv: %w", err)
	}
	records, err := dataset.ParseRecords(bytes.NewReader(raw), loc)
	if err != nil {
		return fmt.Errorf("parse %s: %w", *csvPath, err)
	}
	log.Printf("parsed %d records", len(records))

	root := aggregate.BuildHierarchy(records, *rootName)
	if err := writeJSON(*hierarchyOut, root); err != nil {
		return fmt.Errorf("writing hierarchy fixture: %w", err)
	}
	log.Printf("wrote hierarchy fixture: %s", *hierarchyOut)

	if *sampleOut != "" {
		n, err := writeSample(*sampleOut, bytes.NewReader(raw), *sampleRows)
		if err != nil {
			return fmt.Errorf("writing sample fixture: %w", err)
		}
		log.Printf("wrote sample fixture: %s (%d rows)", *sampleOut, n)
	}

	printStats(records, root)
	return nil
}

// writeSample copies the header and the first n data rows of r to path.
func writeSample(path string, r io.Reader, n int) (int, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return 0, err
	}
	f, err := os.Create(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	written := -1 // header
	for written < n {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return 0, err
		}
		if err := w.Write(row); err != nil {
			return 0, err
		}
		written++
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return 0, err
	}
	return max(written, 0), f.Close()
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o600)
}

func printStats(records []domain.Record, root domain.HierarchyNode) {
	p := message.NewPrinter(language.English)

	var noTime, noVolume int
	var total float64
	for i := range records {
		r := &records[i]
		if !r.HasTime() {
			noTime++
		}
		if math.IsNaN(r.TrafficVolume) {
			noVolume++
			continue
		}
		total += r.TrafficVolume
	}

	fmt.Println("\n=== Stats for updating test assertions ===")
	p.Printf("Records: %d\n", len(records))
	p.Printf("Without a valid date_time: %d\n", noTime)
	p.Printf("Without a traffic_volume: %d\n", noVolume)
	p.Printf("Traffic total (CSV): %.0f\n", total)
	p.Printf("Traffic total (hierarchy): %.0f\n", root.Total())
	p.Printf("Years: %d, depth: %d\n", len(root.Children), root.Depth())
	for _, year := range root.Children {
		p.Printf("  %s: %d months, %.0f vehicles\n", year.Name, len(year.Children), year.Total())
	}
}
