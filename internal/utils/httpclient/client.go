package httpclient

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// 浏览器UA（部分站点有WAF，裸UA会被拦）
const BrowserUA = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) " +
	"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// 429/5xx 最多尝试3次（首次请求 + 2次退避重试）
const maxAttempts = 3

// StatusError 上游返回的非2xx状态。4xx（非429）由调用方按致命处理，
// 429/5xx在客户端内部已重试耗尽。
type StatusError struct {
	Code int
	URL  string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("上游返回状态%d: %s", e.Code, e.URL)
}

// Client 通用HTTP客户端：按上游主机限速（令牌桶），429/5xx指数退避重试。
// 解析器与地理编码器共用一个实例，同一主机的请求共享桶。
type Client struct {
	http    *http.Client
	logger  *logrus.Logger
	perHost rate.Limit
	burst   int

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// New 构建客户端。ratePerHost 为每主机每秒请求数上限。
func New(timeout time.Duration, ratePerHost int, logger *logrus.Logger) *Client {
	if ratePerHost <= 0 {
		ratePerHost = 4
	}
	transport := &http.Transport{
		MaxIdleConns:        100,
		IdleConnTimeout:     30 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}
	return &Client{
		http: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
		logger:   logger,
		perHost:  rate.Limit(ratePerHost),
		burst:    1,
		limiters: make(map[string]*rate.Limiter),
	}
}

// limiter 取（或建）目标主机的令牌桶
func (c *Client) limiter(host string) *rate.Limiter {
	c.mu.Lock()
	defer c.mu.Unlock()
	l, ok := c.limiters[host]
	if !ok {
		l = rate.NewLimiter(c.perHost, c.burst)
		c.limiters[host] = l
	}
	return l
}

// Get 限速+重试的GET。超出令牌桶时挂起等待；429/5xx退避重试，最多尝试3次，
// 其余4xx立即返回StatusError。
func (c *Client) Get(ctx context.Context, rawURL string) (*http.Response, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("解析URL失败: %w", err)
	}

	var resp *http.Response
	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), maxAttempts-1), ctx)

	operation := func() error {
		if err := c.limiter(u.Host).Wait(ctx); err != nil {
			return backoff.Permanent(err)
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("User-Agent", BrowserUA)

		r, err := c.http.Do(req)
		if err != nil {
			return err // 网络错误：重试
		}
		switch {
		case r.StatusCode < 300:
			resp = r
			return nil
		case r.StatusCode == http.StatusTooManyRequests || r.StatusCode >= 500:
			r.Body.Close()
			c.logger.WithFields(logrus.Fields{
				"url": rawURL, "status": r.StatusCode,
			}).Warn("上游暂时不可用，退避重试")
			return &StatusError{Code: r.StatusCode, URL: rawURL}
		default:
			r.Body.Close()
			return backoff.Permanent(&StatusError{Code: r.StatusCode, URL: rawURL})
		}
	}

	if err := backoff.Retry(operation, policy); err != nil {
		return nil, err
	}
	return resp, nil
}

// GetBody GET并读出整个响应体
func (c *Client) GetBody(ctx context.Context, rawURL string) ([]byte, error) {
	resp, err := c.Get(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}

// PostJSON 限速POST（通用提取器用），body为已编码的JSON
func (c *Client) PostJSON(ctx context.Context, rawURL string, body io.Reader) (*http.Response, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("解析URL失败: %w", err)
	}
	if err := c.limiter(u.Host).Wait(ctx); err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 300 {
		resp.Body.Close()
		return nil, &StatusError{Code: resp.StatusCode, URL: rawURL}
	}
	return resp, nil
}
