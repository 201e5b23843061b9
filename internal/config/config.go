package config

import (
	"os"
	"strconv"
	"time"
)

// Settings 应用配置（环境变量覆盖默认值）
type Settings struct {
	// NVD API
	NVDAPIURL string
	NVDAPIKey string

	// EUVD API（预留）
	EUVDAPIURL string

	// RDF 存储目录
	StoreDir string

	// 图节点URI的基础前缀
	GraphBase string

	// HTTP 服务
	ListenAddr string

	// SPARQL 查询超时
	SPARQLTimeout time.Duration

	// 软件分类关键词表路径
	ClassesFile string
}

// Load 加载配置，先取默认值再用环境变量覆盖
func Load() *Settings {
	s := &Settings{
		NVDAPIURL:     "https://services.nvd.nist.gov/rest/json/cves/2.0",
		EUVDAPIURL:    "https://euvdservices.enisa.europa.eu/api",
		StoreDir:      "database/rdf",
		GraphBase:     "http://tianluodiwang.example.org",
		ListenAddr:    ":8000",
		SPARQLTimeout: 10 * time.Second,
		ClassesFile:   "config/settings.yaml",
	}

	if v := os.Getenv("NVD_API_URL"); v != "" {
		s.NVDAPIURL = v
	}
	if v := os.Getenv("NVD_API_KEY"); v != "" {
		s.NVDAPIKey = v
	}
	if v := os.Getenv("EUVD_API_URL"); v != "" {
		s.EUVDAPIURL = v
	}
	if v := os.Getenv("STORE_DIR"); v != "" {
		s.StoreDir = v
	}
	if v := os.Getenv("GRAPH_BASE"); v != "" {
		s.GraphBase = v
	}
	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		s.ListenAddr = v
	}
	if v := os.Getenv("SPARQL_TIMEOUT"); v != "" {
		if sec, err := strconv.Atoi(v); err == nil && sec > 0 {
			s.SPARQLTimeout = time.Duration(sec) * time.Second
		}
	}
	if v := os.Getenv("CLASSES_FILE"); v != "" {
		s.ClassesFile = v
	}

	return s
}
