package dataset

import (
	"bytes"
	"encoding/csv"
	"fmt"
)

// Dataset 上传文件的内存表示，所有单元格均为原始文本
type Dataset struct {
	columns []string
	index   map[string]int
	rows    [][]string
}

// New 根据表头和数据行创建数据集，列名必须唯一且每行列数一致
func New(columns []string, rows [][]string) (*Dataset, error) {
	index := make(map[string]int, len(columns))
	for i, name := range columns {
		if _, dup := index[name]; dup {
			return nil, fmt.Errorf("重复的列名: %q", name)
		}
		index[name] = i
	}

	for i, row := range rows {
		if len(row) != len(columns) {
			return nil, fmt.Errorf("第%d行有%d个字段，表头有%d列", i+1, len(row), len(columns))
		}
	}

	cols := make([]string, len(columns))
	copy(cols, columns)

	return &Dataset{columns: cols, index: index, rows: rows}, nil
}

// Columns 列名，保持文件中的顺序
func (d *Dataset) Columns() []string {
	out := make([]string, len(d.columns))
	copy(out, d.columns)
	return out
}

// RowCount 行数
func (d *Dataset) RowCount() int {
	return len(d.rows)
}

// Column 返回指定列的所有单元格
func (d *Dataset) Column(name string) ([]string, bool) {
	idx, ok := d.index[name]
	if !ok {
		return nil, false
	}
	out := make([]string, len(d.rows))
	for i, row := range d.rows {
		out[i] = row[idx]
	}
	return out, true
}

// Row 返回第i行的副本
func (d *Dataset) Row(i int) []string {
	out := make([]string, len(d.rows[i]))
	copy(out, d.rows[i])
	return out
}

// Head 返回前n行
func (d *Dataset) Head(n int) [][]string {
	if n > len(d.rows) {
		n = len(d.rows)
	}
	out := make([][]string, n)
	for i := 0; i < n; i++ {
		out[i] = d.Row(i)
	}
	return out
}

// EncodeCSV 将数据集重新序列化为UTF-8 CSV
func (d *Dataset) EncodeCSV() ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(d.columns); err != nil {
		return nil, fmt.Errorf("写入表头失败: %w", err)
	}
	if err := w.WriteAll(d.rows); err != nil {
		return nil, fmt.Errorf("写入数据行失败: %w", err)
	}

	return buf.Bytes(), nil
}
