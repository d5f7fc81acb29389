// Command validate performs data integrity checks on a traffic dataset pair:
// the tabular CSV and the hierarchy JSON the sunburst draws. It verifies that
// rows parse, that the hierarchy is well formed, and that both datasets carry
// the same traffic total.
//
// Usage:
//
//	go run ./cmd/validate \
//	  -csv data/output_data.csv \
//	  -hierarchy data/hierarchical_traffic_data.json
package main

import (
	"flag"
	"fmt"
	"math"
	"os"
	"strings"
	"time"

	"github.com/madu12/metro-interstate-traffic-volume/internal/aggregate"
	"github.com/madu12/metro-interstate-traffic-volume/internal/dataset"
	"github.com/madu12/metro-interstate-traffic-volume/internal/domain"
)

// maxListed caps the per-phase errors printed for one kind of problem.
const maxListed = 10

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
	notes  []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) notef(format string, args ...any) {
	p.notes = append(p.notes, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	csvPath := flag.String("csv", "", "path to the traffic CSV")
	hierarchyPath := flag.String("hierarchy", "", "path to the hierarchy JSON")
	tz := flag.String("tz", "UTC", "time zone of timestamps without an offset")
	flag.Parse()

	if *csvPath == "" || *hierarchyPath == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(*csvPath, *hierarchyPath, *tz); code != 0 {
		os.Exit(code)
	}
}

func run(csvPath, hierarchyPath, tz string) int {
	fmt.Println("=== Traffic Data Integrity Validation ===")
	fmt.Println()

	loc, err := time.LoadLocation(tz)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load time zone: %v\n", err)
		return 1
	}

	f, err := os.Open(csvPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: open CSV: %v\n", err)
		return 1
	}
	records, err := dataset.ParseRecords(f, loc)
	f.Close()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: parse CSV: %v\n", err)
		return 1
	}

	raw, err := os.ReadFile(hierarchyPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: read hierarchy: %v\n", err)
		return 1
	}
	root, err := dataset.ParseHierarchy(raw)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: parse hierarchy: %v\n", err)
		return 1
	}

	phases := []*phase{
		validateRecords(records),
		validateHierarchyShape(root),
		validateTotals(records, root),
	}

	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
		for _, n := range p.notes {
			fmt.Printf("      %s\n", n)
		}
	}

	fmt.Println()
	fmt.Printf("Records: %d CSV rows, %d hierarchy nodes\n", len(records), countNodes(root))

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

// ── Phases ──

// validateRecords checks that rows parsed into usable records. Blank weather
// cells are expected and only reported.
func validateRecords(records []domain.Record) *phase {
	p := &phase{name: "CSV rows parse"}
	if len(records) == 0 {
		p.errorf("CSV has no data rows")
		return p
	}

	var badTime, badVolume int
	for i := range records {
		r := &records[i]
		line := i + 2
		if !r.HasTime() {
			if badTime < maxListed {
				p.errorf("line %d: date_time is missing or invalid", line)
			}
			badTime++
		}
		if math.IsNaN(r.TrafficVolume) {
			if badVolume < maxListed {
				p.errorf("line %d: traffic_volume is missing or not a number", line)
			}
			badVolume++
		}
	}
	if badTime > maxListed || badVolume > maxListed {
		p.errorf("%d rows with invalid date_time, %d with invalid traffic_volume", badTime, badVolume)
	}

	for _, v := range domain.Variables() {
		missing := 0
		for i := range records {
			if x, ok := records[i].Value(v); !ok || math.IsNaN(x) {
				missing++
			}
		}
		if missing > 0 {
			p.notef("%s: %d blank or non-numeric cells", v, missing)
		}
	}
	return p
}

// validateHierarchyShape checks that every node is named, that sizes sit on
// leaves only, and that every leaf sits at the same depth.
func validateHierarchyShape(root domain.HierarchyNode) *phase {
	p := &phase{name: "Hierarchy shape"}
	if root.IsLeaf() {
		p.errorf("root %q has no children", root.Name)
		return p
	}

	leafDepths := map[int]int{}
	var walk func(n domain.HierarchyNode, path []string)
	walk = func(n domain.HierarchyNode, path []string) {
		path = append(path, n.Name)
		where := strings.Join(path, " / ")
		if strings.TrimSpace(n.Name) == "" {
			p.errorf("%s: node has no name", where)
		}
		if n.IsLeaf() {
			leafDepths[len(path)-1]++
			switch {
			case n.Size == nil:
				p.errorf("%s: leaf has no size", where)
			case math.IsNaN(*n.Size) || math.IsInf(*n.Size, 0) || *n.Size < 0:
				p.errorf("%s: leaf size %v is not a non-negative number", where, *n.Size)
			}
			return
		}
		if n.Size != nil {
			p.errorf("%s: inner node carries a size, which is ignored", where)
		}
		for _, c := range n.Children {
			walk(c, path)
		}
	}
	walk(root, nil)

	if len(leafDepths) > 1 {
		p.errorf("leaves sit at mixed depths: %v", leafDepths)
	}
	p.notef("root %q, %d top-level nodes, depth %d", root.Name, len(root.Children), root.Depth())
	return p
}

// validateTotals checks that the hierarchy sums to the traffic the CSV rows
// with a valid date and volume carry, and that it splits the same way by year.
func validateTotals(records []domain.Record, root domain.HierarchyNode) *phase {
	p := &phase{name: "Traffic totals match"}

	derived := aggregate.BuildHierarchy(records, root.Name)
	if !floatEq(derived.Total(), root.Total()) {
		p.errorf("hierarchy total %.0f, CSV total %.0f", root.Total(), derived.Total())
	}

	want := make(map[string]float64, len(derived.Children))
	for _, y := range derived.Children {
		want[y.Name] = y.Total()
	}
	for _, y := range root.Children {
		w, ok := want[y.Name]
		if !ok {
			p.errorf("%s: not in the CSV", y.Name)
			continue
		}
		if !floatEq(w, y.Total()) {
			p.errorf("%s: hierarchy total %.0f, CSV total %.0f", y.Name, y.Total(), w)
		}
		delete(want, y.Name)
	}
	for name := range want {
		p.errorf("%s: in the CSV but not in the hierarchy", name)
	}

	p.notef("total %.0f", root.Total())
	return p
}

// ── Helpers ──

// floatEq compares totals with a relative tolerance since leaf sizes are
// summed in a different order than the CSV rows.
func floatEq(a, b float64) bool {
	return math.Abs(a-b) <= 1e-9*math.Max(1, math.Max(math.Abs(a), math.Abs(b)))
}

func countNodes(n domain.HierarchyNode) int {
	total := 1
	for _, c := range n.Children {
		total += countNodes(c)
	}
	return total
}
