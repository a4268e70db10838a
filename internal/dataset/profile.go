package dataset

import (
	"math"
	"sort"
	"strings"

	"github.com/spf13/cast"
)

const (
	distributionThreshold = 10
	distributionTop       = 5
	sampleSize            = 5
)

// ValueCount 值及其出现次数
type ValueCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// ColumnProfile 单列质量分析
type ColumnProfile struct {
	Name         string       `json:"name"`
	Unique       int          `json:"unique_values"`
	Empty        int          `json:"empty_values"`
	Distribution []ValueCount `json:"distribution,omitempty"`
	Samples      []string     `json:"samples,omitempty"`
}

// ColumnCounts 单列的非空、空值和不同值个数，不同值不计空值
type ColumnCounts struct {
	Name     string `json:"name"`
	NonEmpty int    `json:"non_empty"`
	Empty    int    `json:"empty"`
	Unique   int    `json:"unique_values"`
}

// NumericColumn 数值列统计
type NumericColumn struct {
	Name  string  `json:"name"`
	Count int     `json:"count"`
	Mean  float64 `json:"mean"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
}

// Profile 数据质量报告
type Profile struct {
	Rows          int             `json:"rows"`
	Columns       int             `json:"columns"`
	EmptyCells    int             `json:"empty_cells"`
	DuplicateRows int             `json:"duplicate_rows"`
	Completeness  float64         `json:"completeness"`
	ColumnInfo    []ColumnCounts  `json:"column_info"`
	ColumnDetails []ColumnProfile `json:"column_details"`
	Numeric       []NumericColumn `json:"numeric_columns"`
}

// BuildProfile 生成数据质量报告。所有列都有计数信息，
// 只对 columns 中存在于数据集的列做分布和数值分析。
func BuildProfile(ds *Dataset, columns []string) *Profile {
	p := &Profile{
		Rows:          ds.RowCount(),
		Columns:       len(ds.columns),
		ColumnInfo:    make([]ColumnCounts, 0, len(ds.columns)),
		ColumnDetails: []ColumnProfile{},
		Numeric:       []NumericColumn{},
	}

	seen := make(map[string]struct{}, len(ds.rows))
	for _, row := range ds.rows {
		for _, cell := range row {
			if strings.TrimSpace(cell) == "" {
				p.EmptyCells++
			}
		}
		key := strings.Join(row, "\x1f")
		if _, dup := seen[key]; dup {
			p.DuplicateRows++
			continue
		}
		seen[key] = struct{}{}
	}

	cells := p.Rows * p.Columns
	p.Completeness = 100
	if cells > 0 {
		p.Completeness = math.Round((1-float64(p.EmptyCells)/float64(cells))*1000) / 10
	}

	for _, name := range ds.columns {
		values, _ := ds.Column(name)
		p.ColumnInfo = append(p.ColumnInfo, columnCounts(name, values))
	}

	for _, name := range columns {
		values, ok := ds.Column(name)
		if !ok {
			continue
		}
		p.ColumnDetails = append(p.ColumnDetails, profileColumn(name, values))
		if num, ok := numericColumn(name, values); ok {
			p.Numeric = append(p.Numeric, num)
		}
	}

	return p
}

func profileColumn(name string, values []string) ColumnProfile {
	cp := ColumnProfile{Name: name}

	counts := CountValues(values)
	cp.Unique = len(counts)
	for _, v := range values {
		if strings.TrimSpace(v) == "" {
			cp.Empty++
		}
	}

	if cp.Unique <= distributionThreshold {
		n := distributionTop
		if n > len(counts) {
			n = len(counts)
		}
		cp.Distribution = counts[:n]
		return cp
	}

	cp.Samples = firstDistinct(values, sampleSize)
	return cp
}

// firstDistinct 按首次出现顺序取前n个不同值
func firstDistinct(values []string, n int) []string {
	seen := make(map[string]struct{}, n)
	out := make([]string, 0, n)
	for _, v := range values {
		if len(out) == n {
			break
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

func columnCounts(name string, values []string) ColumnCounts {
	cc := ColumnCounts{Name: name}
	distinct := make(map[string]struct{})
	for _, v := range values {
		if strings.TrimSpace(v) == "" {
			cc.Empty++
			continue
		}
		cc.NonEmpty++
		distinct[v] = struct{}{}
	}
	cc.Unique = len(distinct)
	return cc
}

// numericColumn 所有非空值都能转换为数字时才视为数值列
func numericColumn(name string, values []string) (NumericColumn, bool) {
	num := NumericColumn{Name: name, Min: math.Inf(1), Max: math.Inf(-1)}
	sum := 0.0
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		f, err := cast.ToFloat64E(v)
		if err != nil {
			return NumericColumn{}, false
		}
		if math.IsNaN(f) {
			continue
		}
		num.Count++
		sum += f
		num.Min = math.Min(num.Min, f)
		num.Max = math.Max(num.Max, f)
	}
	if num.Count == 0 {
		return NumericColumn{}, false
	}
	num.Mean = sum / float64(num.Count)
	return num, true
}

// CountValues 统计频次，按次数降序，次数相同时按首次出现顺序
func CountValues(values []string) []ValueCount {
	index := make(map[string]int)
	var counts []ValueCount
	for _, v := range values {
		if i, ok := index[v]; ok {
			counts[i].Count++
			continue
		}
		index[v] = len(counts)
		counts = append(counts, ValueCount{Value: v, Count: 1})
	}

	sort.SliceStable(counts, func(i, j int) bool {
		return counts[i].Count > counts[j].Count
	})
	return counts
}
