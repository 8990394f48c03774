package analysis

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/analytica/backend/internal/model"
)

var ErrInvalidCSV = errors.New("invalid csv")

var quartileLevels = []struct {
	key string
	p   float64
}{
	{"0.25", 0.25},
	{"0.5", 0.5},
	{"0.75", 0.75},
}

type Table struct {
	Header []string
	Rows   [][]string
}

// ParseCSV reads a header row followed by records of the same width.
func ParseCSV(data []byte) (*Table, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.TrimLeadingSpace = true
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCSV, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: missing header row", ErrInvalidCSV)
	}
	return &Table{Header: records[0], Rows: records[1:]}, nil
}

func (t *Table) Encode() ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(t.Header); err != nil {
		return nil, err
	}
	if err := w.WriteAll(t.Rows); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

type numericColumn struct {
	name   string
	values []float64 // indexed by row, NaN for missing cells
	sorted []float64
}

// Describe computes mean, median, mode and quartiles for every numeric column
// and the rows holding at least one value outside the 1.5*IQR fences.
func Describe(t *Table) model.TabularAnalysisResponse {
	stats := model.TabularStatistics{
		Mean:      map[string]float64{},
		Median:    map[string]float64{},
		Mode:      map[string]float64{},
		Quartiles: map[string]map[string]float64{},
	}
	outlierRows := map[int]struct{}{}

	for _, col := range numericColumns(t) {
		stats.Mean[col.name] = mean(col.sorted)
		stats.Median[col.name] = quantile(col.sorted, 0.5)
		stats.Mode[col.name] = mode(col.sorted)

		quartiles := make(map[string]float64, len(quartileLevels))
		for _, level := range quartileLevels {
			quartiles[level.key] = quantile(col.sorted, level.p)
		}
		stats.Quartiles[col.name] = quartiles

		q1, q3 := quartiles["0.25"], quartiles["0.75"]
		iqr := q3 - q1
		low, high := q1-1.5*iqr, q3+1.5*iqr
		for row, v := range col.values {
			if math.IsNaN(v) {
				continue
			}
			if v < low || v > high {
				outlierRows[row] = struct{}{}
			}
		}
	}

	outliers := make([]int, 0, len(outlierRows))
	for row := range outlierRows {
		outliers = append(outliers, row)
	}
	sort.Ints(outliers)

	return model.TabularAnalysisResponse{Statistics: stats, Outliers: outliers}
}

func numericColumns(t *Table) []numericColumn {
	var cols []numericColumn
	for c, name := range t.Header {
		col := numericColumn{name: name, values: make([]float64, len(t.Rows))}
		numeric := true
		for r, row := range t.Rows {
			cell := ""
			if c < len(row) {
				cell = strings.TrimSpace(row[c])
			}
			if cell == "" {
				col.values[r] = math.NaN()
				continue
			}
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				numeric = false
				break
			}
			// NaN and Inf tokens parse but count as missing, like empty cells.
			if math.IsNaN(v) || math.IsInf(v, 0) {
				col.values[r] = math.NaN()
				continue
			}
			col.values[r] = v
			col.sorted = append(col.sorted, v)
		}
		if !numeric || len(col.sorted) == 0 {
			continue
		}
		sort.Float64s(col.sorted)
		cols = append(cols, col)
	}
	return cols
}

func mean(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// quantile interpolates linearly between the closest ranks of sorted.
func quantile(sorted []float64, p float64) float64 {
	h := float64(len(sorted)-1) * p
	lo := int(math.Floor(h))
	if lo+1 >= len(sorted) {
		return sorted[len(sorted)-1]
	}
	return sorted[lo] + (h-float64(lo))*(sorted[lo+1]-sorted[lo])
}

// mode returns the most frequent value; ties resolve to the smallest.
func mode(sorted []float64) float64 {
	best, bestCount := sorted[0], 0
	for i := 0; i < len(sorted); {
		j := i
		for j < len(sorted) && sorted[j] == sorted[i] {
			j++
		}
		if j-i > bestCount {
			best, bestCount = sorted[i], j-i
		}
		i = j
	}
	return best
}
