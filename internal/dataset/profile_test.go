package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildProfile(t *testing.T) {
	ds, err := New(
		[]string{"age", "region", "note"},
		[][]string{
			{"30", "north", ""},
			{"40", "south", "x"},
			{"30", "north", ""},
			{"", "north", "y"},
		},
	)
	require.NoError(t, err)

	p := BuildProfile(ds, []string{"age", "region", "missing_col"})

	assert.Equal(t, 4, p.Rows)
	assert.Equal(t, 3, p.Columns)
	assert.Equal(t, 3, p.EmptyCells)
	assert.Equal(t, 1, p.DuplicateRows)
	assert.Equal(t, 75.0, p.Completeness)

	require.Len(t, p.ColumnDetails, 2)
	region := p.ColumnDetails[1]
	assert.Equal(t, "region", region.Name)
	assert.Equal(t, 2, region.Unique)
	assert.Equal(t, []ValueCount{{"north", 3}, {"south", 1}}, region.Distribution)

	age := p.ColumnDetails[0]
	assert.Equal(t, 1, age.Empty)
	assert.Equal(t, 3, age.Unique)

	require.Len(t, p.Numeric, 1)
	assert.Equal(t, NumericColumn{Name: "age", Count: 3, Mean: 100.0 / 3, Min: 30, Max: 40}, p.Numeric[0])

	assert.Equal(t, []ColumnCounts{
		{Name: "age", NonEmpty: 3, Empty: 1, Unique: 2},
		{Name: "region", NonEmpty: 4, Empty: 0, Unique: 2},
		{Name: "note", NonEmpty: 2, Empty: 2, Unique: 2},
	}, p.ColumnInfo)
}

func TestBuildProfile_SamplesForHighCardinality(t *testing.T) {
	rows := make([][]string, 0, 12)
	for _, v := range []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k", "l"} {
		rows = append(rows, []string{v})
	}
	ds, err := New([]string{"id"}, rows)
	require.NoError(t, err)

	p := BuildProfile(ds, []string{"id"})

	require.Len(t, p.ColumnDetails, 1)
	assert.Nil(t, p.ColumnDetails[0].Distribution)
	assert.Equal(t, []string{"a", "b", "c", "d", "e"}, p.ColumnDetails[0].Samples)
	assert.Empty(t, p.Numeric)
}

func TestBuildProfile_SamplesKeepFirstAppearance(t *testing.T) {
	values := []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k", "k", "j", "k"}
	rows := make([][]string, len(values))
	for i, v := range values {
		rows[i] = []string{v, "fixed"}
	}
	ds, err := New([]string{"code", "other"}, rows)
	require.NoError(t, err)

	p := BuildProfile(ds, []string{"code"})

	require.Len(t, p.ColumnDetails, 1)
	assert.Equal(t, 11, p.ColumnDetails[0].Unique)
	assert.Equal(t, []string{"a", "b", "c", "d", "e"}, p.ColumnDetails[0].Samples)

	require.Len(t, p.ColumnInfo, 2)
	assert.Equal(t, ColumnCounts{Name: "other", NonEmpty: 14, Unique: 1}, p.ColumnInfo[1])
}

func TestBuildProfile_Empty(t *testing.T) {
	ds, err := New([]string{"a"}, nil)
	require.NoError(t, err)

	p := BuildProfile(ds, []string{"a"})
	assert.Equal(t, 100.0, p.Completeness)
	assert.Equal(t, 0, p.DuplicateRows)
	assert.Equal(t, []ColumnCounts{{Name: "a"}}, p.ColumnInfo)
}

func TestCountValues(t *testing.T) {
	counts := CountValues([]string{"b", "a", "a", "c", "b"})
	assert.Equal(t, []ValueCount{{"b", 2}, {"a", 2}, {"c", 1}}, counts)
}
