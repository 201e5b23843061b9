package model

import (
	"encoding/json"
	"time"
)

// Vulnerability 漏洞聚合根（解析完成后不再修改，重复入库直接跳过）
type Vulnerability struct {
	ID          string          `json:"id"`
	Description string          `json:"description,omitempty"`
	CVSSScore   *float64        `json:"cvss_score,omitempty"`
	CVSSVector  string          `json:"cvss_vector,omitempty"`
	Published   *time.Time      `json:"published,omitempty"`
	Modified    *time.Time      `json:"modified,omitempty"`
	Affected    []SoftwareRef   `json:"affected,omitempty"`
	References  []string        `json:"references,omitempty"`
	Advisories  []Advisory      `json:"advisories,omitempty"`
	Raw         json.RawMessage `json:"-"` // 原始报文快照，保留以便后续处理
}

// SoftwareRef 受影响的软件
type SoftwareRef struct {
	Name     string `json:"name"`
	Vendor   string `json:"vendor,omitempty"`
	Product  string `json:"product,omitempty"`
	Version  string `json:"version,omitempty"`
	CPE      string `json:"cpe,omitempty"`
	Category string `json:"category,omitempty"` // 由分类器赋值，空表示未分类
}

// Advisory 安全公告
type Advisory struct {
	ID        string `json:"id,omitempty"` // 为空时回退到所属漏洞的ID
	Title     string `json:"title,omitempty"`
	Text      string `json:"text,omitempty"`
	URL       string `json:"url,omitempty"`
	Publisher string `json:"publisher,omitempty"`
}
