package vulnsrc

import (
	"context"
	"encoding/json"
	"errors"

	"TianLuoDiWang/internal/model"
)

// ErrRetryExhausted 单页请求重试次数用尽，整个抓取就此中止
// （已经交付的前缀不回滚，下游按至少一次语义处理）
var ErrRetryExhausted = errors.New("重试次数已用尽")

// PageCursor 分页游标
type PageCursor struct {
	StartIndex int
}

// Page 单页抓取结果
type Page struct {
	Items []json.RawMessage
	Next  PageCursor
	Done  bool // 源已报告无更多数据
}

// FetchOptions 抓取参数
type FetchOptions struct {
	Limit        int    // 0 表示不限制（上限由调用方控制）
	Since        string // 修改时间水位线（ISO格式），空表示全量
	PubStartDate string // 按发布日期窗口回填时使用
	PubEndDate   string
}

// Source 漏洞数据源能力接口。每个具体数据源（NVD、未来的EUVD）
// 实现该接口，摄取管道只面向接口编写一次。
type Source interface {
	Name() string
	FetchPage(ctx context.Context, cursor PageCursor, opts FetchOptions) (Page, error)
	ParseRecord(raw json.RawMessage) model.Vulnerability
}
