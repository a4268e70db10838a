package summary

import (
	"encoding/json"
	"testing"

	"predict-go/pkg/predictor"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func textResult(values ...string) predictor.Result {
	r := make(predictor.Result, len(values))
	for i, v := range values {
		r[i] = predictor.StringValue(v)
	}
	return r
}

func numberResult(values ...string) predictor.Result {
	r := make(predictor.Result, len(values))
	for i, v := range values {
		r[i] = predictor.NumberValue(json.Number(v))
	}
	return r
}

func TestSummarize_Numeric(t *testing.T) {
	stats := Summarize(numberResult("1", "2", "3"))

	assert.Equal(t, KindNumeric, stats.Kind)
	assert.Equal(t, 3, stats.Total)
	require.NotNil(t, stats.Numeric)
	assert.Nil(t, stats.Categorical)
	assert.InDelta(t, 2.0, stats.Numeric.Mean, 1e-9)
	assert.Equal(t, 1.0, stats.Numeric.Min)
	assert.Equal(t, 3.0, stats.Numeric.Max)
	assert.Equal(t, 3, stats.UniqueCount())
}

func TestSummarize_NumericStrings(t *testing.T) {
	stats := Summarize(textResult("0.5", "1.5", "", "NaN", "1.5"))

	assert.Equal(t, KindNumeric, stats.Kind)
	assert.Equal(t, 5, stats.Total)
	assert.Equal(t, 3, stats.Numeric.Valid)
	assert.InDelta(t, 3.5/3, stats.Numeric.Mean, 1e-9)
	assert.Equal(t, 0.5, stats.Numeric.Min)
	assert.Equal(t, 1.5, stats.Numeric.Max)

	mode, ok := stats.Mode()
	assert.True(t, ok)
	assert.Equal(t, "1.5", mode)
}

func TestSummarize_Categorical(t *testing.T) {
	stats := Summarize(textResult("a", "b", "a"))

	assert.Equal(t, KindCategorical, stats.Kind)
	require.NotNil(t, stats.Categorical)
	assert.Nil(t, stats.Numeric)
	assert.Equal(t, "a", stats.Categorical.Mode)
	assert.Equal(t, 2, stats.Categorical.UniqueCount)
	assert.Equal(t, []Frequency{
		{Value: "a", Count: 2, Percentage: 66.67},
		{Value: "b", Count: 1, Percentage: 33.33},
	}, stats.Frequencies)
}

func TestSummarize_OneNonNumericMakesCategorical(t *testing.T) {
	stats := Summarize(textResult("1", "2", "churn"))
	assert.Equal(t, KindCategorical, stats.Kind)
}

func TestSummarize_AllMissingIsCategorical(t *testing.T) {
	stats := Summarize(textResult("", ""))
	assert.Equal(t, KindCategorical, stats.Kind)
	assert.Equal(t, "", stats.Categorical.Mode)
}

func TestSummarize_TieBreakByFirstOccurrence(t *testing.T) {
	stats := Summarize(textResult("y", "x", "x", "y", "z"))

	assert.Equal(t, "y", stats.Categorical.Mode)
	assert.Equal(t, []string{"y", "x", "z"}, []string{
		stats.Frequencies[0].Value,
		stats.Frequencies[1].Value,
		stats.Frequencies[2].Value,
	})
	assert.Equal(t, 40.0, stats.Frequencies[0].Percentage)
	assert.Equal(t, 20.0, stats.Frequencies[2].Percentage)
}

func TestSummarize_Empty(t *testing.T) {
	stats := Summarize(predictor.Result{})

	assert.Equal(t, KindEmpty, stats.Kind)
	assert.Equal(t, 0, stats.Total)
	assert.Nil(t, stats.Numeric)
	assert.Nil(t, stats.Categorical)
	assert.Empty(t, stats.Frequencies)

	_, ok := stats.Mode()
	assert.False(t, ok)
}
