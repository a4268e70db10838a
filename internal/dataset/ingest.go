package dataset

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

const (
	EncodingUTF8   = "utf-8"
	EncodingLatin1 = "latin-1"
)

var utf8BOM = []byte("\xEF\xBB\xBF")

// MalformedInputError 上传文件无法解码或解析
type MalformedInputError struct {
	Message string
}

func (e *MalformedInputError) Error() string {
	return "无法解析CSV文件: " + e.Message
}

// IngestInfo 读取过程的附加信息
type IngestInfo struct {
	Encoding string   `json:"encoding"`
	Warnings []string `json:"warnings,omitempty"`
	Size     int      `json:"file_size"`
}

// Ingest 解析上传的原始字节。非UTF-8内容按ISO-8859-1重新解码并给出警告，
// 任何解析失败都返回 *MalformedInputError 且不返回部分数据。
func Ingest(raw []byte) (*Dataset, *IngestInfo, error) {
	info := &IngestInfo{Encoding: EncodingUTF8, Size: len(raw)}

	text := bytes.TrimPrefix(raw, utf8BOM)
	if !utf8.Valid(text) {
		decoded, _, err := transform.Bytes(charmap.ISO8859_1.NewDecoder(), text)
		if err != nil {
			return nil, nil, &MalformedInputError{Message: fmt.Sprintf("编码转换失败: %v", err)}
		}
		text = decoded
		info.Encoding = EncodingLatin1
		info.Warnings = append(info.Warnings, "文件不是有效的UTF-8编码，已按Latin-1读取")
	}

	ds, err := parse(text)
	if err != nil {
		return nil, nil, err
	}

	return ds, info, nil
}

func parse(text []byte) (*Dataset, error) {
	reader := csv.NewReader(bytes.NewReader(text))
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, &MalformedInputError{Message: "文件为空，缺少表头"}
	}
	if err != nil {
		return nil, &MalformedInputError{Message: err.Error()}
	}

	seen := make(map[string]struct{}, len(header))
	for _, name := range header {
		if _, dup := seen[name]; dup {
			return nil, &MalformedInputError{Message: fmt.Sprintf("重复的列名: %q", name)}
		}
		seen[name] = struct{}{}
	}

	var rows [][]string
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &MalformedInputError{Message: err.Error()}
		}
		rows = append(rows, record)
	}

	ds, err := New(header, rows)
	if err != nil {
		return nil, &MalformedInputError{Message: err.Error()}
	}
	return ds, nil
}
