package summary

import (
	"math"
	"sort"
	"strings"

	"predict-go/pkg/predictor"

	"github.com/spf13/cast"
)

// Kind 预测结果类型，每个结果只判定一次
type Kind string

const (
	KindNumeric     Kind = "numeric"
	KindCategorical Kind = "categorical"
	KindEmpty       Kind = "empty"
)

// NotApplicable 空结果时均值、众数等的占位值
const NotApplicable = "N/A"

// Frequency 频次表中的一行
type Frequency struct {
	Value      string  `json:"value"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// NumericSummary 数值型结果统计，只基于有效数值
type NumericSummary struct {
	Mean  float64 `json:"mean"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Valid int     `json:"valid"`
}

// CategoricalSummary 分类型结果统计
type CategoricalSummary struct {
	Mode        string `json:"mode"`
	UniqueCount int    `json:"unique_count"`
}

// Stats 预测结果统计。Numeric 和 Categorical 只有一个非空，空结果时都为空。
type Stats struct {
	Kind        Kind                `json:"kind"`
	Total       int                 `json:"total"`
	Numeric     *NumericSummary     `json:"numeric,omitempty"`
	Categorical *CategoricalSummary `json:"categorical,omitempty"`
	Frequencies []Frequency         `json:"frequencies"`
}

// Mode 出现次数最多的值，次数相同取先出现的
func (s *Stats) Mode() (string, bool) {
	if len(s.Frequencies) == 0 {
		return "", false
	}
	return s.Frequencies[0].Value, true
}

// UniqueCount 不同值个数
func (s *Stats) UniqueCount() int {
	return len(s.Frequencies)
}

// Summarize 尝试把所有预测值转为数字，全部成功则按数值统计，否则按分类统计。
// 空值和NaN不参与均值和极值，但计入总数。
func Summarize(result predictor.Result) *Stats {
	stats := &Stats{
		Total:       len(result),
		Frequencies: frequencies(result),
	}

	if len(result) == 0 {
		stats.Kind = KindEmpty
		return stats
	}

	if numeric, ok := numericSummary(result); ok {
		stats.Kind = KindNumeric
		stats.Numeric = numeric
		return stats
	}

	mode, _ := stats.Mode()
	stats.Kind = KindCategorical
	stats.Categorical = &CategoricalSummary{
		Mode:        mode,
		UniqueCount: stats.UniqueCount(),
	}
	return stats
}

func numericSummary(result predictor.Result) (*NumericSummary, bool) {
	summary := &NumericSummary{Min: math.Inf(1), Max: math.Inf(-1)}
	sum := 0.0

	for _, v := range result {
		text := strings.TrimSpace(v.String())
		if text == "" {
			continue
		}
		f, err := cast.ToFloat64E(text)
		if err != nil {
			return nil, false
		}
		if math.IsNaN(f) {
			continue
		}
		summary.Valid++
		sum += f
		summary.Min = math.Min(summary.Min, f)
		summary.Max = math.Max(summary.Max, f)
	}

	if summary.Valid == 0 {
		return nil, false
	}
	summary.Mean = sum / float64(summary.Valid)
	return summary, true
}

// frequencies 频次表，按次数降序，次数相同按首次出现顺序
func frequencies(result predictor.Result) []Frequency {
	index := make(map[string]int)
	table := []Frequency{}
	for _, v := range result {
		key := v.String()
		if i, ok := index[key]; ok {
			table[i].Count++
			continue
		}
		index[key] = len(table)
		table = append(table, Frequency{Value: key, Count: 1})
	}

	sort.SliceStable(table, func(i, j int) bool {
		return table[i].Count > table[j].Count
	})

	total := float64(len(result))
	for i := range table {
		table[i].Percentage = round2(float64(table[i].Count) / total * 100)
	}
	return table
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
