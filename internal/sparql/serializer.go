package sparql

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strings"
)

// 支持的响应类型
const (
	MediaSPARQLJSON = "application/sparql-results+json"
	MediaCSV        = "text/csv"
	MediaTSV        = "text/tab-separated-values"
)

// NegotiateMediaType 根据Accept头选择响应格式，默认SPARQL JSON
func NegotiateMediaType(accept string) string {
	switch {
	case strings.Contains(accept, MediaCSV):
		return MediaCSV
	case strings.Contains(accept, MediaTSV):
		return MediaTSV
	default:
		return MediaSPARQLJSON
	}
}

// SerializeResult 按协商的媒体类型渲染查询结果。
// 已序列化的字符串在请求JSON时原样透传；结果集按行渲染；
// 未知形态回退为尽力JSON编码。
func SerializeResult(result interface{}, mediaType string) ([]byte, string, error) {
	if s, ok := result.(string); ok && mediaType == MediaSPARQLJSON {
		return []byte(s), MediaSPARQLJSON, nil
	}

	if r, ok := result.(*Result); ok && r != nil {
		switch mediaType {
		case MediaCSV:
			data, err := rowsToDelimited(r, ',')
			return data, MediaCSV, err
		case MediaTSV:
			data, err := rowsToDelimited(r, '\t')
			return data, MediaTSV, err
		default:
			data, err := r.SerializeJSON()
			return data, MediaSPARQLJSON, err
		}
	}

	// 兜底：尽力JSON编码
	data, err := json.Marshal(result)
	if err != nil {
		return nil, "", fmt.Errorf("结果序列化失败: %w", err)
	}
	return data, "application/json", nil
}

// rowsToDelimited 渲染CSV/TSV：首行为变量名表头，
// 未绑定的变量渲染为空字段，而不是 "None"/"null"。
func rowsToDelimited(r *Result, delimiter rune) ([]byte, error) {
	var sb strings.Builder
	w := csv.NewWriter(&sb)
	w.Comma = delimiter

	if r.Bool != nil {
		if err := w.Write([]string{"boolean"}); err != nil {
			return nil, err
		}
		if err := w.Write([]string{fmt.Sprintf("%t", *r.Bool)}); err != nil {
			return nil, err
		}
		w.Flush()
		return []byte(sb.String()), w.Error()
	}

	if len(r.Vars) == 0 {
		return nil, nil
	}

	if err := w.Write(r.Vars); err != nil {
		return nil, err
	}
	for _, row := range r.Rows {
		record := make([]string, len(r.Vars))
		for i, v := range r.Vars {
			if b, ok := row[v]; ok {
				record[i] = b.Value
			}
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}

	w.Flush()
	return []byte(sb.String()), w.Error()
}
