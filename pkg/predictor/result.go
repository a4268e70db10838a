package predictor

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Value 单条预测值，字符串或数字。数字保留原始JSON文本。
type Value struct {
	text    string
	numeric bool
}

// StringValue 字符串预测值
func StringValue(s string) Value {
	return Value{text: s}
}

// NumberValue 数字预测值
func NumberValue(n json.Number) Value {
	return Value{text: n.String(), numeric: true}
}

// String 文本形式，用于CSV导出和频次统计
func (v Value) String() string {
	return v.text
}

// IsNumber 服务端是否以JSON数字返回
func (v Value) IsNumber() bool {
	return v.numeric
}

// MarshalJSON 按原始类型输出
func (v Value) MarshalJSON() ([]byte, error) {
	if v.numeric {
		return []byte(v.text), nil
	}
	return json.Marshal(v.text)
}

// UnmarshalJSON 只接受字符串或数字
func (v *Value) UnmarshalJSON(data []byte) error {
	parsed, err := parseValue(data)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

func parseValue(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw interface{}
	if err := dec.Decode(&raw); err != nil {
		return Value{}, err
	}

	switch t := raw.(type) {
	case string:
		return StringValue(t), nil
	case json.Number:
		return NumberValue(t), nil
	default:
		return Value{}, fmt.Errorf("不支持的预测值类型: %s", string(data))
	}
}

// Result 一次预测返回的有序结果
type Result []Value

// Strings 文本形式
func (r Result) Strings() []string {
	out := make([]string, len(r))
	for i, v := range r {
		out[i] = v.String()
	}
	return out
}

// parseResult 解析predictions数组，要求类型一致
func parseResult(items []json.RawMessage) (Result, error) {
	result := make(Result, len(items))
	for i, item := range items {
		v, err := parseValue(item)
		if err != nil {
			return nil, fmt.Errorf("第%d条预测: %w", i, err)
		}
		if i > 0 && v.numeric != result[0].numeric {
			return nil, fmt.Errorf("第%d条预测类型与前面不一致", i)
		}
		result[i] = v
	}
	return result, nil
}
