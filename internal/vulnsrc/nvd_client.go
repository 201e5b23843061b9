package vulnsrc

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/hashicorp/go-cleanhttp"

	"TianLuoDiWang/internal/config"
	"TianLuoDiWang/internal/utils"
)

// NVDClient 从NVD 2.0 API分页抓取CVE数据的客户端
type NVDClient struct {
	baseURL     string
	apiKey      string
	pageSize    int
	maxRetries  int
	backoffBase time.Duration
	httpClient  *http.Client
	logger      *utils.Logger
}

func NewNVDClient(settings *config.Settings) *NVDClient {
	httpClient := cleanhttp.DefaultClient()
	httpClient.Timeout = 30 * time.Second

	return &NVDClient{
		baseURL:     settings.NVDAPIURL,
		apiKey:      settings.NVDAPIKey,
		pageSize:    200,
		maxRetries:  3,
		backoffBase: time.Second,
		httpClient:  httpClient,
		logger:      utils.NewLogger("nvd-client"),
	}
}

func (c *NVDClient) Name() string {
	return "nvd"
}

// nvdResponse NVD API响应结构（漏洞条目保留原始报文）
type nvdResponse struct {
	ResultsPerPage  int               `json:"resultsPerPage"`
	StartIndex      int               `json:"startIndex"`
	TotalResults    int               `json:"totalResults"`
	Vulnerabilities []json.RawMessage `json:"vulnerabilities"`
}

// FetchPage 抓取一页原始记录。游标按 startIndex 前进；
// 空页、或 startIndex 达到 totalResults 时报告 Done。
func (c *NVDClient) FetchPage(ctx context.Context, cursor PageCursor, opts FetchOptions) (Page, error) {
	params := url.Values{}
	params.Set("startIndex", strconv.Itoa(cursor.StartIndex))
	params.Set("resultsPerPage", strconv.Itoa(c.pageSize))
	if opts.Since != "" {
		params.Set("lastModStartDate", opts.Since)
		params.Set("lastModEndDate", time.Now().UTC().Format("2006-01-02T15:04:05.000"))
	}
	if opts.PubStartDate != "" {
		params.Set("pubStartDate", opts.PubStartDate)
	}
	if opts.PubEndDate != "" {
		params.Set("pubEndDate", opts.PubEndDate)
	}

	requestURL := c.baseURL + "?" + params.Encode()
	c.logger.Debug("请求URL: %s", requestURL)

	body, err := c.requestWithRetries(ctx, requestURL)
	if err != nil {
		return Page{}, err
	}

	var resp nvdResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return Page{}, fmt.Errorf("解析JSON失败: %w", err)
	}

	page := Page{
		Items: resp.Vulnerabilities,
		Next:  PageCursor{StartIndex: cursor.StartIndex + c.pageSize},
	}

	// 终止条件：空页，或游标已覆盖源报告的总数
	if len(resp.Vulnerabilities) == 0 {
		page.Done = true
	} else if resp.TotalResults > 0 && page.Next.StartIndex >= resp.TotalResults {
		page.Done = true
	}

	c.logger.Debug("获取到 %d 条记录，总结果数: %d", len(resp.Vulnerabilities), resp.TotalResults)
	return page, nil
}

// requestWithRetries 带指数退避和抖动的页面请求。
// 非2xx响应一律按可重试失败处理（含429限流），不做特殊退避。
func (c *NVDClient) requestWithRetries(ctx context.Context, requestURL string) ([]byte, error) {
	var lastErr error

	for attempt := 1; attempt <= c.maxRetries; attempt++ {
		body, err := c.doRequest(ctx, requestURL)
		if err == nil {
			return body, nil
		}
		lastErr = err

		if attempt >= c.maxRetries {
			break
		}

		backoff := c.backoffDelay(attempt)
		c.logger.Warn("请求失败 (第%d/%d次): %v; %s后重试", attempt, c.maxRetries, err, backoff)

		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	return nil, fmt.Errorf("%w: %v", ErrRetryExhausted, lastErr)
}

// backoffDelay 第attempt次失败后的等待: base * 2^(attempt-1) 加 [0, 0.5*该值) 的抖动
func (c *NVDClient) backoffDelay(attempt int) time.Duration {
	backoff := c.backoffBase * (1 << (attempt - 1))
	jitter := time.Duration(rand.Int63n(int64(backoff)/2 + 1))
	return backoff + jitter
}

func (c *NVDClient) doRequest(ctx context.Context, requestURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("创建请求失败: %w", err)
	}

	req.Header.Set("User-Agent", "TianLuoDiWang/1.0")
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("apiKey", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP请求失败: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("读取响应失败: %w", err)
	}

	if resp.StatusCode/100 != 2 {
		return nil, fmt.Errorf("API返回错误: %s", resp.Status)
	}

	return body, nil
}
