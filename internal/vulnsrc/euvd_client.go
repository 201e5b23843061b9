package vulnsrc

import (
	"context"
	"encoding/json"

	"TianLuoDiWang/internal/config"
	"TianLuoDiWang/internal/model"
	"TianLuoDiWang/internal/utils"
)

// EUVDClient 欧盟漏洞库客户端（占位实现）。
// 实现 Source 接口以保持与NVD客户端一致的摄取管道，
// 等EUVD接口细节确定后补全真实抓取逻辑。
type EUVDClient struct {
	baseURL string
	logger  *utils.Logger
}

func NewEUVDClient(settings *config.Settings) *EUVDClient {
	return &EUVDClient{
		baseURL: settings.EUVDAPIURL,
		logger:  utils.NewLogger("euvd-client"),
	}
}

func (c *EUVDClient) Name() string {
	return "euvd"
}

// FetchPage 目前不产出任何记录
func (c *EUVDClient) FetchPage(ctx context.Context, cursor PageCursor, opts FetchOptions) (Page, error) {
	c.logger.Debug("EUVD抓取尚未实现，返回空页")
	return Page{Done: true}, nil
}

// ParseRecord 按通用字段做最小解析
func (c *EUVDClient) ParseRecord(raw json.RawMessage) model.Vulnerability {
	v := model.Vulnerability{Raw: raw}

	var m map[string]interface{}
	if err := json.Unmarshal(raw, &m); err != nil {
		return v
	}

	v.ID = firstNonEmpty(asString(m["id"]), asString(m["cveId"]))
	v.Description = asString(m["description"])
	return v
}
