package ingest

import (
	"context"
	"fmt"

	"TianLuoDiWang/internal/classify"
	"TianLuoDiWang/internal/model"
	"TianLuoDiWang/internal/rdf"
	"TianLuoDiWang/internal/utils"
	"TianLuoDiWang/internal/vulnsrc"
)

// Pipeline 摄取管道：抓取 → 解析 → 分类 → 入库。
// 面向 Source 接口编写，一次一页顺序处理；多个管道可并发
// 共享同一存储，查重由存储层保证。
type Pipeline struct {
	source     vulnsrc.Source
	classifier *classify.Classifier
	store      *rdf.Store
	logger     *utils.Logger
}

func NewPipeline(source vulnsrc.Source, classifier *classify.Classifier, store *rdf.Store) *Pipeline {
	return &Pipeline{
		source:     source,
		classifier: classifier,
		store:      store,
		logger:     utils.NewLogger("ingest-" + source.Name()),
	}
}

// Run 排空一次有界抓取，返回新插入（非重复）的漏洞数。
// 单条解析异常或存储不可用只记录日志不中断整批；
// 抓取硬失败（重试用尽）时中止并上报，已入库的前缀保留。
func (p *Pipeline) Run(ctx context.Context, opts vulnsrc.FetchOptions) (int, error) {
	ingested := 0
	fetched := 0
	cursor := vulnsrc.PageCursor{}

	for {
		page, err := p.source.FetchPage(ctx, cursor, opts)
		if err != nil {
			p.logger.Error("抓取中止: %v（已入库 %d 条）", err, ingested)
			return ingested, err
		}
		if len(page.Items) == 0 {
			break
		}

		for _, raw := range page.Items {
			v := p.source.ParseRecord(raw)
			if v.ID == "" {
				// 标识符缺失的记录仍按空ID入库，此处仅做标记
				p.logger.Warn("记录缺少标识符，按空标识符处理")
			}

			p.classifySoftware(&v)

			res := p.store.StoreVulnerability(v)
			switch res.Status {
			case rdf.StatusInserted:
				ingested++
				p.logger.Debug("入库 %s（%d 条三元组）", v.ID, res.Inserted)
			case rdf.StatusSkipped:
				p.logger.Debug("重复跳过 %s", v.ID)
			case rdf.StatusUnavailable:
				p.logger.Warn("存储不可用，%s 计0条", v.ID)
			}

			fetched++
			if opts.Limit > 0 && fetched >= opts.Limit {
				p.logger.Info("达到抓取上限 %d，新入库 %d 条", opts.Limit, ingested)
				return ingested, nil
			}
		}

		if page.Done {
			break
		}
		cursor = page.Next
	}

	p.logger.Info("摄取完成，新入库 %d 条（共处理 %d 条）", ingested, fetched)
	return ingested, nil
}

// RunRange 按发布年份逐年回填。单个年份失败只告警并继续下一年。
func (p *Pipeline) RunRange(ctx context.Context, startYear, endYear int) (int, error) {
	if startYear > endYear {
		return 0, fmt.Errorf("年份范围无效: %d-%d", startYear, endYear)
	}

	total := 0
	for year := startYear; year <= endYear; year++ {
		p.logger.Info("开始回填 %d 年数据...", year)

		opts := vulnsrc.FetchOptions{
			PubStartDate: fmt.Sprintf("%d-01-01T00:00:00.000", year),
			PubEndDate:   fmt.Sprintf("%d-12-31T23:59:59.999", year),
		}

		count, err := p.Run(ctx, opts)
		total += count
		if err != nil {
			p.logger.Warn("回填 %d 年失败: %v", year, err)
			continue
		}

		p.logger.Info("%d 年回填完成: 新入库 %d 条", year, count)
	}

	p.logger.Info("回填结束，总计新入库 %d 条 (%d-%d)", total, startYear, endYear)
	return total, nil
}

// classifySoftware 为每个受影响软件推导分类
func (p *Pipeline) classifySoftware(v *model.Vulnerability) {
	if p.classifier == nil {
		return
	}
	for i := range v.Affected {
		if v.Affected[i].CPE != "" && v.Affected[i].Category == "" {
			v.Affected[i].Category = p.classifier.Classify(v.Affected[i].CPE)
		}
	}
}
