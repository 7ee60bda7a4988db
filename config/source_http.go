package config

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// maxHTTPBodySize 远程配置文档体积上限（防御异常响应）
const maxHTTPBodySize = 8 << 20

// HTTPResource HTTP 配置资源
// GET 获取文档，按 YAML/JSON 解析；响应中的顶层 "config" mapping 会被展开
type HTTPResource struct {
	url    string
	client *http.Client
}

// NewHTTPResource 创建 HTTP 资源，client 为 nil 时使用 10s 超时的默认客户端
func NewHTTPResource(url string, client *http.Client) *HTTPResource {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &HTTPResource{url: url, client: client}
}

// Name 资源标识
func (r *HTTPResource) Name() string {
	return r.url
}

// Load 拉取并解析远程文档
func (r *HTTPResource) Load() (map[string]any, error) {
	resp, err := r.client.Get(r.url)
	if err != nil {
		return nil, fmt.Errorf("拉取远程配置失败 %s: %w", r.url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("拉取远程配置失败 %s: HTTP %d", r.url, resp.StatusCode)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxHTTPBodySize))
	if err != nil {
		return nil, fmt.Errorf("读取远程配置响应失败 %s: %w", r.url, err)
	}

	data, err := ParseDocument(raw)
	if err != nil {
		return nil, fmt.Errorf("解析远程配置失败 %s: %w", r.url, err)
	}

	// 顶层 config 节展开，允许远端文档带一层包裹
	if wrapped, ok := data["config"].(map[string]any); ok && len(data) == 1 {
		return wrapped, nil
	}
	return data, nil
}

// HTTPResolver "http" / "https" 协议解析器
type HTTPResolver struct {
	scheme string
	client *http.Client
}

// NewHTTPResolver 创建 HTTP 协议解析器
// scheme 为 "http" 或 "https"，client 可为 nil
func NewHTTPResolver(scheme string, client *http.Client) *HTTPResolver {
	if scheme == "" {
		scheme = "http"
	}
	return &HTTPResolver{scheme: scheme, client: client}
}

// Resolve 重建完整 URL
// import 引用在首个 ':' 处拆分，"http://host/x.yml" 的 location 是
// "//host/x.yml"，这里补回 scheme；也接受裸 host/path 形式
func (r *HTTPResolver) Resolve(location string) (Resource, error) {
	if location == "" {
		return nil, fmt.Errorf("http import location 为空")
	}

	var url string
	switch {
	case strings.Contains(location, "://"):
		url = location
	case strings.HasPrefix(location, "//"):
		url = r.scheme + ":" + location
	default:
		url = r.scheme + "://" + location
	}

	return NewHTTPResource(url, r.client), nil
}
