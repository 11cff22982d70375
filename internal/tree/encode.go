package tree

import (
	"math"
	"strconv"
	"strings"
)

// Column names that label rows rather than describe products. Matched
// case-insensitively after trimming.
var identifierNames = map[string]struct{}{
	"id":         {},
	"productid":  {},
	"product_id": {},
	"product id": {},
	"sku":        {},
	"uid":        {},
	"uuid":       {},
	"rowid":      {},
	"row_id":     {},
	"index":      {},
	"#":          {},
}

// Encode converts an already-tokenized table into one feature vector per row
// plus the shared feature-name list. Numeric columns map to a single feature;
// categorical columns one-hot expand into "<column>=<value>" features in
// first-observation order; identifier columns are excluded from features but
// remain in the original row. Missing or unparseable numeric cells encode as
// 0 so no row is ever dropped.
func Encode(headers []string, rows [][]string) ([]ProductVector, []string, error) {
	if len(headers) == 0 || len(rows) == 0 {
		return nil, nil, ErrEmptyInput
	}

	idCol := -1
	var featureNames []string
	// Per-column extractor producing this column's feature values for a row.
	type extractor func(cell string) []float64

	var extractors []extractor
	var extractorCols []int

	// Value-based index detection only runs when no column is already named
	// as the identifier; with a labelled ID present, a contiguous integer
	// column is a feature, not a second row index.
	hasNamedID := false
	for _, name := range headers {
		if isIdentifierName(name) {
			hasNamedID = true
			break
		}
	}

	for col, name := range headers {
		cells := columnCells(rows, col)
		if isIdentifierName(name) || (!hasNamedID && looksSequential(cells)) {
			if idCol == -1 {
				idCol = col
			}
			continue
		}
		if isNumericColumn(cells) {
			featureNames = append(featureNames, name)
			extractors = append(extractors, numericExtractor)
			extractorCols = append(extractorCols, col)
			continue
		}
		values := distinctValues(cells)
		for _, v := range values {
			featureNames = append(featureNames, name+"="+v)
		}
		extractors = append(extractors, oneHotExtractor(values))
		extractorCols = append(extractorCols, col)
	}

	if len(featureNames) == 0 {
		return nil, nil, ErrNoFeatures
	}

	products := make([]ProductVector, 0, len(rows))
	for i, row := range rows {
		features := make([]float64, 0, len(featureNames))
		for k, ex := range extractors {
			features = append(features, ex(cellAt(row, extractorCols[k]))...)
		}
		products = append(products, ProductVector{
			ID:          productID(row, idCol, i),
			Features:    features,
			OriginalRow: row,
		})
	}
	return products, featureNames, nil
}

func columnCells(rows [][]string, col int) []string {
	cells := make([]string, len(rows))
	for i, row := range rows {
		cells[i] = cellAt(row, col)
	}
	return cells
}

// cellAt tolerates ragged rows: missing cells read as empty.
func cellAt(row []string, col int) string {
	if col >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[col])
}

func productID(row []string, idCol, rowIndex int) string {
	if idCol >= 0 && idCol < len(row) && strings.TrimSpace(row[idCol]) != "" {
		return strings.TrimSpace(row[idCol])
	}
	return strconv.Itoa(rowIndex)
}

func isIdentifierName(name string) bool {
	key := strings.ToLower(strings.TrimSpace(name))
	_, ok := identifierNames[key]
	return ok
}

// looksSequential reports whether the column is a unique, contiguous run of
// integers, i.e. a row index in disguise. Two rows of integers are far more
// likely to be a short numeric feature than an index, so at least three rows
// are required before the column is written off.
func looksSequential(cells []string) bool {
	if len(cells) < 3 {
		return false
	}
	seen := make(map[int64]struct{}, len(cells))
	min, max := int64(math.MaxInt64), int64(math.MinInt64)
	for _, c := range cells {
		n, err := strconv.ParseInt(c, 10, 64)
		if err != nil {
			return false
		}
		if _, dup := seen[n]; dup {
			return false
		}
		seen[n] = struct{}{}
		if n < min {
			min = n
		}
		if n > max {
			max = n
		}
	}
	return max-min == int64(len(cells)-1)
}

func isNumericColumn(cells []string) bool {
	for _, c := range cells {
		if c == "" {
			continue
		}
		f, err := strconv.ParseFloat(c, 64)
		if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
			return false
		}
	}
	return true
}

// distinctValues returns a column's distinct non-empty values in
// first-observation order, keeping feature ordering deterministic.
func distinctValues(cells []string) []string {
	seen := make(map[string]struct{}, len(cells))
	var values []string
	for _, c := range cells {
		if c == "" {
			continue
		}
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		values = append(values, c)
	}
	return values
}

func numericExtractor(cell string) []float64 {
	if cell == "" {
		return []float64{0}
	}
	f, err := strconv.ParseFloat(cell, 64)
	if err != nil {
		return []float64{0}
	}
	return []float64{f}
}

func oneHotExtractor(values []string) func(cell string) []float64 {
	return func(cell string) []float64 {
		out := make([]float64, len(values))
		for i, v := range values {
			if cell == v {
				out[i] = 1
			}
		}
		return out
	}
}
