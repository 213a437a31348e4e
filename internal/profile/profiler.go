package profile

import (
	"sort"
	"strconv"

	"gonum.org/v1/gonum/stat"

	"goexpect/domain/batch"
	"goexpect/domain/profile"
)

const maxSampleValues = 5

// Profile summarizes a resolved batch column by column. The summary feeds
// rule suggestion and dataset preview surfaces; it never mutates the batch.
func Profile(b *batch.Batch) profile.TableProfile {
	prof := profile.TableProfile{
		RowCount: b.RowCount(),
		Columns:  make([]profile.ColumnProfile, 0, len(b.Columns)),
	}

	for _, name := range b.Columns {
		prof.Columns = append(prof.Columns, profileColumn(name, b.ColumnValues(name)))
	}
	return prof
}

func profileColumn(name string, values []batch.Value) profile.ColumnProfile {
	col := profile.ColumnProfile{Name: name}

	distinct := make(map[string]struct{})
	var nums []float64
	var samples []string
	missing := 0
	booleans := 0
	present := 0

	for _, v := range values {
		if v == nil || v == "" {
			missing++
			continue
		}
		present++

		key := stringForm(v)
		if _, seen := distinct[key]; !seen {
			distinct[key] = struct{}{}
			if len(samples) < maxSampleValues {
				samples = append(samples, key)
			}
		}

		switch t := v.(type) {
		case float64:
			nums = append(nums, t)
		case bool:
			booleans++
		}
	}

	col.Cardinality = len(distinct)
	col.Samples = samples
	if len(values) > 0 {
		col.MissingRate = float64(missing) / float64(len(values))
	}

	switch {
	case present > 0 && len(nums) == present:
		col.DataType = "numeric"
		fillNumericStats(&col, nums)
	case present > 0 && booleans == present:
		col.DataType = "boolean"
	default:
		col.DataType = "text"
	}
	return col
}

func fillNumericStats(col *profile.ColumnProfile, nums []float64) {
	sorted := append([]float64(nil), nums...)
	sort.Float64s(sorted)

	min := sorted[0]
	max := sorted[len(sorted)-1]
	mean := stat.Mean(nums, nil)
	stdDev := stat.StdDev(nums, nil)

	col.Min = &min
	col.Max = &max
	col.Mean = &mean
	col.StdDev = &stdDev
}

func stringForm(v batch.Value) string {
	switch t := v.(type) {
	case string:
		return t
	case bool:
		if t {
			return "true"
		}
		return "false"
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return ""
	}
}
