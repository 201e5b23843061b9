package rdf

import (
	"time"

	"TianLuoDiWang/internal/model"
	"TianLuoDiWang/internal/utils"
)

func float64Ptr(f float64) *float64 { return &f }

func timePtr(t time.Time) *time.Time { return &t }

// SeedSampleData 插入演示用的样例漏洞（走正常入库路径，重复执行幂等）
func SeedSampleData(s *Store) error {
	logger := utils.NewLogger("seed")
	logger.Info("初始化样例漏洞数据...")

	samples := []model.Vulnerability{
		{
			ID:          "CVE-2021-23017",
			Description: "Nginx DNS解析漏洞，可导致拒绝服务攻击",
			CVSSScore:   float64Ptr(7.5),
			CVSSVector:  "CVSS:3.1/AV:N/AC:H/PR:N/UI:N/S:U/C:N/I:N/A:H",
			Published:   timePtr(time.Date(2021, 6, 1, 0, 0, 0, 0, time.UTC)),
			Modified:    timePtr(time.Date(2021, 6, 15, 0, 0, 0, 0, time.UTC)),
			Affected: []model.SoftwareRef{
				{
					Name:    "nginx",
					Vendor:  "nginx",
					Product: "nginx",
					CPE:     "cpe:2.3:a:nginx:nginx:*:*:*:*:*:*:*:*",
				},
			},
			References: []string{"https://nvd.nist.gov/vuln/detail/CVE-2021-23017"},
		},
		{
			ID:          "CVE-2021-40438",
			Description: "Apache HTTP Server 请求走私漏洞",
			CVSSScore:   float64Ptr(8.2),
			Published:   timePtr(time.Date(2021, 9, 16, 0, 0, 0, 0, time.UTC)),
			Modified:    timePtr(time.Date(2021, 9, 24, 0, 0, 0, 0, time.UTC)),
			Affected: []model.SoftwareRef{
				{
					Name:    "http_server",
					Vendor:  "apache",
					Product: "http_server",
					Version: "2.4.48",
					CPE:     "cpe:2.3:a:apache:http_server:2.4.48:*:*:*:*:*:*:*",
				},
			},
			Advisories: []model.Advisory{
				{
					Title:     "mod_proxy SSRF advisory",
					URL:       "https://httpd.apache.org/security/vulnerabilities_24.html",
					Publisher: "Apache Software Foundation",
				},
			},
		},
		{
			ID:          "CVE-2022-3602",
			Description: "OpenSSL X.509证书验证漏洞",
			CVSSScore:   float64Ptr(9.8),
			Published:   timePtr(time.Date(2022, 11, 1, 0, 0, 0, 0, time.UTC)),
			Affected: []model.SoftwareRef{
				{
					Name:    "openssl",
					Vendor:  "openssl",
					Product: "openssl",
					Version: "3.0.0",
					CPE:     "cpe:2.3:a:openssl:openssl:3.0.0:*:*:*:*:*:*:*",
				},
			},
		},
	}

	inserted := 0
	for _, v := range samples {
		res := s.StoreVulnerability(v)
		switch res.Status {
		case StatusInserted:
			inserted++
			logger.Debug("插入样例漏洞: %s", v.ID)
		case StatusSkipped:
			logger.Debug("样例漏洞已存在: %s", v.ID)
		case StatusUnavailable:
			logger.Error("插入样例漏洞失败: %s", v.ID)
		}
	}

	logger.Info("样例数据初始化完成，新插入 %d 个漏洞", inserted)
	return nil
}
