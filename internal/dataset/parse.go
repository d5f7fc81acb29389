package dataset

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/madu12/metro-interstate-traffic-volume/internal/domain"
)

// requiredColumns must be present in the header; the others default to blank.
var requiredColumns = []string{string(domain.TrafficVolume), "date_time"}

// ParseRecords decodes the tabular CSV. Columns are located by header name
// and short rows read as blank cells.
func ParseRecords(r io.Reader, loc *time.Location) ([]domain.Record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("csv is empty")
		}
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		index[name] = i
	}
	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("csv missing column %q", col)
		}
	}

	cell := func(row []string, col string) string {
		i, ok := index[col]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	var records []domain.Record
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row %d: %w", len(records)+2, err)
		}
		raw := domain.RawRecord{
			TrafficVolume:  cell(row, string(domain.TrafficVolume)),
			Temp:           cell(row, string(domain.Temp)),
			Rain1h:         cell(row, string(domain.Rain1h)),
			Snow1h:         cell(row, string(domain.Snow1h)),
			CloudsAll:      cell(row, string(domain.CloudsAll)),
			HolidayIndexed: cell(row, string(domain.HolidayIndexed)),
			DateTime:       cell(row, "date_time"),
		}
		records = append(records, domain.ParseRecord(raw, loc))
	}
	return records, nil
}

// ParseHierarchy decodes the nested {name, size?, children?} document.
func ParseHierarchy(data []byte) (domain.HierarchyNode, error) {
	var root domain.HierarchyNode
	if len(bytes.TrimSpace(data)) == 0 {
		return root, errors.New("hierarchy document is empty")
	}
	if err := json.Unmarshal(data, &root); err != nil {
		return domain.HierarchyNode{}, fmt.Errorf("decode hierarchy: %w", err)
	}
	return root, nil
}
