// Package core 为 imgfans 客户端提供配置与统一错误类型
// 此文件处理配置管理，包括从环境变量和CLI参数加载配置
package core

import (
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// DefaultBaseURL 图床服务的默认 API 地址
const DefaultBaseURL = "https://imgfans.com/api/v1"

// Config 表示 imgfans 命令行工具的完整配置
type Config struct {
	Imgfans ClientConfig // 图床 API 配置
	Output  OutputConfig // 输出与缓存配置
}

// ClientConfig 图床客户端配置
type ClientConfig struct {
	Token      string        // Bearer Token（必需）
	BaseURL    string        // API 地址，为空时使用 DefaultBaseURL
	Timeout    time.Duration // 请求超时，0 表示不限制；仅在未指定 HTTPClient 时生效
	HTTPClient *http.Client  // 自定义 HTTP 客户端（可选）
	Logger     *log.Logger   // 调试日志（可选），默认丢弃
}

// OutputConfig 命令行输出设置
type OutputConfig struct {
	Format       string // 输出格式: table / direct / download / markdown / html / bbcode / json
	CacheEnabled bool   // 是否启用上传缓存
	CacheDir     string // 缓存目录，为空时使用当前目录下的 .imgfans
}

// Validate 校验客户端配置，Token 为空时返回 KindConfiguration 错误
func (c *ClientConfig) Validate() error {
	if c == nil || strings.TrimSpace(c.Token) == "" {
		return NewError(KindConfiguration, "缺少 API Token", nil)
	}
	return nil
}

// Endpoint 返回去掉末尾斜杠的 API 地址
func (c *ClientConfig) Endpoint() string {
	base := strings.TrimSpace(c.BaseURL)
	if base == "" {
		base = DefaultBaseURL
	}
	return strings.TrimRight(base, "/")
}

// Client 返回实际使用的 HTTP 客户端
func (c *ClientConfig) Client() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return &http.Client{Timeout: c.Timeout}
}

// Log 返回日志记录器，未配置时丢弃输出
func (c *ClientConfig) Log() *log.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return log.New(io.Discard, "", 0)
}

// NewConfig 使用提供的凭据和默认输出设置创建新配置
func NewConfig(token, baseURL string) *Config {
	return &Config{
		Imgfans: ClientConfig{
			Token:   token,
			BaseURL: baseURL,
			Timeout: 120 * time.Second, // 单张图片上传超时
		},
		Output: OutputConfig{
			Format:       "table", // 默认表格输出全部引用
			CacheEnabled: true,    // 默认启用上传缓存
		},
	}
}

// LoadConfig 加载配置，优先级：CLI参数 > 环境变量 > 默认值
func LoadConfig(token, baseURL string) (*Config, error) {
	config := NewConfig("", "")

	if envToken := os.Getenv("IMGFANS_TOKEN"); envToken != "" {
		config.Imgfans.Token = envToken
	}
	if envBaseURL := os.Getenv("IMGFANS_BASE_URL"); envBaseURL != "" {
		config.Imgfans.BaseURL = envBaseURL
	}
	if envTimeout := os.Getenv("IMGFANS_TIMEOUT"); envTimeout != "" {
		timeout, err := time.ParseDuration(envTimeout)
		if err != nil {
			return nil, errors.Wrapf(err, "IMGFANS_TIMEOUT 格式错误: %q", envTimeout)
		}
		config.Imgfans.Timeout = timeout
	}

	// CLI参数覆盖（最高优先级）
	if token != "" {
		config.Imgfans.Token = token
	}
	if baseURL != "" {
		config.Imgfans.BaseURL = baseURL
	}

	loadOutputConfig(config)

	return config, nil
}

// loadOutputConfig 从环境变量加载输出配置
func loadOutputConfig(config *Config) {
	if format := os.Getenv("IMGFANS_FORMAT"); format != "" {
		config.Output.Format = format
	}
	switch os.Getenv("IMGFANS_CACHE") {
	case "true", "1":
		config.Output.CacheEnabled = true
	case "false", "0":
		config.Output.CacheEnabled = false
	}
	if cacheDir := os.Getenv("IMGFANS_CACHE_DIR"); cacheDir != "" {
		config.Output.CacheDir = cacheDir
	}
}
