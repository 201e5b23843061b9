package vulnsrc

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"TianLuoDiWang/internal/model"
)

// ParseRecord 见 ParseNVDRecord
func (c *NVDClient) ParseRecord(raw json.RawMessage) model.Vulnerability {
	return ParseNVDRecord(raw)
}

// ParseNVDRecord 将一条原始NVD记录解析为漏洞模型。纯函数，永不报错：
// 字段缺失或形状异常时丢弃该字段，记录本身照常产出。
// 同一逻辑字段按历史版式的固定优先级逐个尝试，先命中者生效。
func ParseNVDRecord(raw json.RawMessage) model.Vulnerability {
	v := model.Vulnerability{Raw: raw}

	var m map[string]interface{}
	if err := json.Unmarshal(raw, &m); err != nil {
		return v
	}

	cveMeta := asMap(m["cve"])
	if cveMeta == nil {
		cveMeta = asMap(m["vuln"])
	}
	if cveMeta == nil {
		cveMeta = m
	}

	// 标识符按候选字段顺序回退，全部缺失时保持空串（由调用方决定取舍）
	v.ID = firstNonEmpty(
		digString(cveMeta, "id"),
		digString(cveMeta, "CVE_data_meta", "ID"),
		digString(m, "id"),
		digString(m, "cveId"),
	)

	v.Description = parseDescription(cveMeta)
	v.CVSSScore, v.CVSSVector = parseCVSS(m, cveMeta)
	v.Published = parseTimeField(
		digString(cveMeta, "published"),
		digString(m, "publishedDate"),
	)
	v.Modified = parseTimeField(
		digString(cveMeta, "lastModified"),
		digString(m, "lastModifiedDate"),
	)
	v.Affected = parseAffected(m, cveMeta)
	v.References, v.Advisories = parseReferences(cveMeta)

	return v
}

// parseDescription 优先2.0版式（descriptions数组取en），回退旧版式
func parseDescription(cveMeta map[string]interface{}) string {
	if descs := asSlice(cveMeta["descriptions"]); descs != nil {
		first := ""
		for _, d := range descs {
			dm := asMap(d)
			if dm == nil {
				continue
			}
			value := asString(dm["value"])
			if first == "" {
				first = value
			}
			if asString(dm["lang"]) == "en" && value != "" {
				return value
			}
		}
		if first != "" {
			return first
		}
	}

	if data := digSlice(cveMeta, "description", "description_data"); len(data) > 0 {
		if dm := asMap(data[0]); dm != nil {
			return asString(dm["value"])
		}
	}

	return ""
}

// parseCVSS 按 v3.1 → v3.0 → 旧版baseMetricV3 → v2 的顺序提取分数和向量。
// 分数无法按数值解析时整个字段丢弃，绝不当作0处理。
func parseCVSS(m, cveMeta map[string]interface{}) (*float64, string) {
	candidates := [][]interface{}{
		digSlice(cveMeta, "metrics", "cvssMetricV31"),
		digSlice(cveMeta, "metrics", "cvssMetricV30"),
	}
	for _, metrics := range candidates {
		if len(metrics) == 0 {
			continue
		}
		data := digMap(asMap(metrics[0]), "cvssData")
		if data == nil {
			continue
		}
		if score, ok := asFloat(data["baseScore"]); ok {
			return &score, asString(data["vectorString"])
		}
	}

	if data := digMap(m, "impact", "baseMetricV3", "cvssV3"); data != nil {
		if score, ok := asFloat(data["baseScore"]); ok {
			return &score, asString(data["vectorString"])
		}
	}

	if metrics := digSlice(cveMeta, "metrics", "cvssMetricV2"); len(metrics) > 0 {
		data := digMap(asMap(metrics[0]), "cvssData")
		if data != nil {
			if score, ok := asFloat(data["baseScore"]); ok {
				return &score, asString(data["vectorString"])
			}
		}
	}

	if data := digMap(m, "impact", "baseMetricV2", "cvssV2"); data != nil {
		if score, ok := asFloat(data["baseScore"]); ok {
			return &score, asString(data["vectorString"])
		}
	}

	return nil, ""
}

// parseAffected 遍历配置节点提取受影响软件。CPE字符串按冒号切分，
// 不足5段的静默跳过；vendor=第4段, product=第5段。
func parseAffected(m, cveMeta map[string]interface{}) []model.SoftwareRef {
	var affected []model.SoftwareRef

	appendCPE := func(uri string) {
		parts := strings.Split(uri, ":")
		if len(parts) < 5 {
			return
		}
		ref := model.SoftwareRef{
			Vendor:  parts[3],
			Product: parts[4],
			CPE:     uri,
		}
		if len(parts) > 5 && parts[5] != "*" {
			ref.Version = parts[5]
		}
		ref.Name = ref.Product
		if ref.Name == "" {
			ref.Name = uri
		}
		affected = append(affected, ref)
	}

	// 2.0版式: cve.configurations[].nodes[].cpeMatch[].criteria
	for _, cfg := range asSlice(cveMeta["configurations"]) {
		for _, node := range digSlice(asMap(cfg), "nodes") {
			for _, match := range digSlice(asMap(node), "cpeMatch") {
				mm := asMap(match)
				if mm == nil || !vulnerableFlag(mm) {
					continue
				}
				if uri := asString(mm["criteria"]); uri != "" {
					appendCPE(uri)
				}
			}
		}
	}

	// 旧版式: configurations.nodes[].cpe_match[].cpe23Uri
	for _, node := range digSlice(m, "configurations", "nodes") {
		for _, match := range digSlice(asMap(node), "cpe_match") {
			mm := asMap(match)
			if mm == nil || !vulnerableFlag(mm) {
				continue
			}
			uri := asString(mm["cpe23Uri"])
			if uri == "" {
				uri = asString(mm["cpe_uri"])
			}
			if uri != "" {
				appendCPE(uri)
			}
		}
	}

	return affected
}

// vulnerableFlag 缺失时按受影响处理
func vulnerableFlag(m map[string]interface{}) bool {
	if flag, ok := m["vulnerable"].(bool); ok {
		return flag
	}
	return true
}

// parseReferences 提取参考链接；2.0版式中带 Vendor Advisory 标签的
// 链接同时生成一条安全公告
func parseReferences(cveMeta map[string]interface{}) ([]string, []model.Advisory) {
	var refs []string
	var advisories []model.Advisory

	// 2.0版式: references 是数组
	if list := asSlice(cveMeta["references"]); list != nil {
		for _, r := range list {
			rm := asMap(r)
			if rm == nil {
				continue
			}
			u := asString(rm["url"])
			if u == "" {
				continue
			}
			refs = append(refs, u)

			for _, tag := range asSlice(rm["tags"]) {
				if asString(tag) == "Vendor Advisory" {
					advisories = append(advisories, model.Advisory{
						URL:       u,
						Publisher: asString(rm["source"]),
					})
					break
				}
			}
		}
		return refs, advisories
	}

	// 旧版式: references.reference_data[].url
	for _, r := range digSlice(cveMeta, "references", "reference_data") {
		rm := asMap(r)
		if rm == nil {
			continue
		}
		if u := asString(rm["url"]); u != "" {
			refs = append(refs, u)
		}
	}

	return refs, advisories
}

var timeFormats = []string{
	"2006-01-02T15:04:05.000",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04Z",
}

func parseTimeField(candidates ...string) *time.Time {
	for _, s := range candidates {
		if s == "" {
			continue
		}
		for _, layout := range timeFormats {
			if t, err := time.Parse(layout, s); err == nil {
				return &t
			}
		}
	}
	return nil
}

// ---- 容错取值辅助：任意深度缺键时返回零值，绝不panic ----

func asMap(v interface{}) map[string]interface{} {
	m, _ := v.(map[string]interface{})
	return m
}

func asSlice(v interface{}) []interface{} {
	s, _ := v.([]interface{})
	return s
}

func asString(v interface{}) string {
	s, _ := v.(string)
	return s
}

// asFloat 接受JSON数值或可解析为数值的字符串
func asFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

func digMap(m map[string]interface{}, keys ...string) map[string]interface{} {
	cur := m
	for _, k := range keys {
		if cur == nil {
			return nil
		}
		cur = asMap(cur[k])
	}
	return cur
}

func digSlice(m map[string]interface{}, keys ...string) []interface{} {
	if len(keys) == 0 || m == nil {
		return nil
	}
	parent := digMap(m, keys[:len(keys)-1]...)
	if parent == nil {
		return nil
	}
	return asSlice(parent[keys[len(keys)-1]])
}

func digString(m map[string]interface{}, keys ...string) string {
	if len(keys) == 0 || m == nil {
		return ""
	}
	parent := digMap(m, keys[:len(keys)-1]...)
	if parent == nil {
		return ""
	}
	return asString(parent[keys[len(keys)-1]])
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
