package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

var (
	ErrConfigInvalid   = errors.New("gateway config invalid")
	ErrNotFound        = errors.New("gateway resource not found")
	ErrRequestFailed   = errors.New("gateway request failed")
	ErrResponseInvalid = errors.New("gateway response invalid")
)

const defaultTimeout = 5 * time.Second

// Config 网关客户端配置
type Config struct {
	BaseURL    string // 网关地址，如 http://marketplace:8081
	Token      string // Bearer Token
	TimeoutMS  int    // 单次请求超时
	MaxRetries int    // 传输层失败重试次数
}

// Client ApplicationGateway 的 HTTP 实现
type Client struct {
	cfg        Config
	httpClient *http.Client
}

// NewClient 创建网关客户端
func NewClient(cfg Config) (*Client, error) {
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	cfg.Token = strings.TrimSpace(cfg.Token)
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("%w: base_url is required", ErrConfigInvalid)
	}
	timeout := defaultTimeout
	if cfg.TimeoutMS > 0 {
		timeout = time.Duration(cfg.TimeoutMS) * time.Millisecond
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

// GetCampaign 查询推广活动
func (c *Client) GetCampaign(ctx context.Context, campaignID uint) (*Campaign, error) {
	var campaign Campaign
	endpoint := fmt.Sprintf("/api/v1/campaigns/%d", campaignID)
	if err := c.doJSON(ctx, http.MethodGet, endpoint, nil, &campaign); err != nil {
		return nil, err
	}
	if campaign.ID == 0 {
		return nil, fmt.Errorf("%w: campaign id missing", ErrResponseInvalid)
	}
	return &campaign, nil
}

// GetApplication 查询合作申请
func (c *Client) GetApplication(ctx context.Context, applicationID uint) (*Application, error) {
	var application Application
	endpoint := fmt.Sprintf("/api/v1/applications/%d", applicationID)
	if err := c.doJSON(ctx, http.MethodGet, endpoint, nil, &application); err != nil {
		return nil, err
	}
	if application.ID == 0 {
		return nil, fmt.Errorf("%w: application id missing", ErrResponseInvalid)
	}
	return &application, nil
}

// SetApplicationStatus 推进合作申请状态，网关侧保证幂等
func (c *Client) SetApplicationStatus(ctx context.Context, applicationID uint, status string) error {
	endpoint := fmt.Sprintf("/api/v1/applications/%d/status", applicationID)
	payload := map[string]string{"status": status}
	return c.doJSON(ctx, http.MethodPut, endpoint, payload, nil)
}

// doJSON 发起 JSON 请求并解析响应，传输层错误按 MaxRetries 重试
func (c *Client) doJSON(ctx context.Context, method, endpoint string, payload interface{}, out interface{}) error {
	var body []byte
	if payload != nil {
		var err error
		body, err = json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("%w: marshal payload: %v", ErrRequestFailed, err)
		}
	}

	var lastErr error
	for attempt := 0; attempt <= c.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return fmt.Errorf("%w: %v", ErrRequestFailed, ctx.Err())
			case <-time.After(time.Duration(attempt) * 200 * time.Millisecond):
			}
		}
		retryable, err := c.doOnce(ctx, method, endpoint, body, out)
		if err == nil {
			return nil
		}
		lastErr = err
		if !retryable {
			return err
		}
	}
	return lastErr
}

func (c *Client) doOnce(ctx context.Context, method, endpoint string, body []byte, out interface{}) (bool, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+endpoint, reader)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return true, fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return false, ErrNotFound
	case resp.StatusCode >= 500:
		return true, fmt.Errorf("%w: http status %d", ErrRequestFailed, resp.StatusCode)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return false, fmt.Errorf("%w: http status %d", ErrRequestFailed, resp.StatusCode)
	}

	if out == nil {
		return false, nil
	}
	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return true, fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	if err := json.Unmarshal(respBytes, out); err != nil {
		return false, fmt.Errorf("%w: %v", ErrResponseInvalid, err)
	}
	return false, nil
}
