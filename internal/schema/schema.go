package schema

// Schema 预测所需的列名集合，有序
type Schema []string

// Required 预测模型要求的固定列
var Required = Schema{
	"trf",
	"age",
	"gndr",
	"tenure",
	"age_dev",
	"dev_man",
	"device_os_name",
	"dev_num",
	"is_dualsim",
	"simcard_type",
	"region",
}

// Columns 返回列名副本
func (s Schema) Columns() []string {
	out := make([]string, len(s))
	copy(out, s)
	return out
}

// Report 列校验结果
type Report struct {
	Missing []string `json:"missing"`
	Extra   []string `json:"extra"`
}

// Predictable 缺失列为空时才允许预测，多余列不影响
func (r Report) Predictable() bool {
	return len(r.Missing) == 0
}

// Validate 对比数据集列和Schema。Missing按Schema顺序，Extra按数据集顺序。
func Validate(columns []string, s Schema) Report {
	present := make(map[string]struct{}, len(columns))
	for _, c := range columns {
		present[c] = struct{}{}
	}
	required := make(map[string]struct{}, len(s))
	for _, c := range s {
		required[c] = struct{}{}
	}

	report := Report{Missing: []string{}, Extra: []string{}}
	for _, c := range s {
		if _, ok := present[c]; !ok {
			report.Missing = append(report.Missing, c)
		}
	}
	for _, c := range columns {
		if _, ok := required[c]; !ok {
			report.Extra = append(report.Extra, c)
		}
	}

	return report
}
