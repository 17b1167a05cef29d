// Package imgbed - imgfans 上传客户端
package imgbed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"

	"github.com/Wsine/imgfans/core"
	"github.com/pkg/errors"
)

// Client imgfans 图床客户端，构造后只读，可并发使用
type Client struct {
	endpoint   string
	token      string
	httpClient *http.Client
	normalizer *Normalizer
	logger     *log.Logger
}

// NewClient 创建图床客户端
// Token 为空时立即返回 KindConfiguration 错误，不发起任何网络请求
func NewClient(cfg *core.ClientConfig) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	httpClient := cfg.Client()
	return &Client{
		endpoint:   cfg.Endpoint(),
		token:      strings.TrimSpace(cfg.Token),
		httpClient: httpClient,
		normalizer: NewNormalizer(httpClient),
		logger:     cfg.Log(),
	}, nil
}

// GetName 获取平台名称
func (c *Client) GetName() string {
	return "imgfans"
}

// Endpoint 上传接口地址
func (c *Client) Endpoint() string {
	return c.endpoint + "/upload"
}

// Upload 识别输入并上传到图床
func (c *Client) Upload(ctx context.Context, input any, filename string) (*UploadResult, error) {
	src, err := c.normalizer.Normalize(ctx, ParseInput(input), filename)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	return c.Send(ctx, src)
}

// Send 以 multipart/form-data 上传字节源，字段名为 file
func (c *Client) Send(ctx context.Context, src *Source) (*UploadResult, error) {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint(), pr)
	if err != nil {
		return nil, core.NewError(core.KindConfiguration, fmt.Sprintf("上传地址无效: %s", c.Endpoint()), err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", mw.FormDataContentType())

	go func() {
		pw.CloseWithError(writeFilePart(mw, src))
	}()

	c.logger.Printf("上传 %s (%s) -> %s", src.Filename, src.MimeType, c.Endpoint())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Do 出错时会关闭请求体，写入协程随之退出
		return nil, core.NewTransportError(0, nil, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, core.NewTransportError(resp.StatusCode, nil, errors.Wrap(err, "读取响应失败"))
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		c.logger.Printf("上传失败 %s: HTTP %d", src.Filename, resp.StatusCode)
		return nil, core.NewTransportError(resp.StatusCode, payload,
			errors.Errorf("上传接口返回 %s", resp.Status))
	}

	var result UploadResult
	if err := json.Unmarshal(payload, &result); err != nil {
		e := core.NewError(core.KindInvalidResponse, "响应不是合法的 JSON", err)
		e.StatusCode = resp.StatusCode
		e.Payload = payload
		return nil, e
	}
	if !result.Success {
		return nil, core.NewTransportError(resp.StatusCode, payload,
			errors.New("上传接口返回 success=false"))
	}
	return &result, nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// writeFilePart 写入 file 字段并结束 multipart 消息
func writeFilePart(mw *multipart.Writer, src *Source) error {
	mimeType := src.MimeType
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="file"; filename="%s"`, quoteEscaper.Replace(src.Filename)))
	h.Set("Content-Type", mimeType)

	part, err := mw.CreatePart(h)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, src.Reader); err != nil {
		return errors.Wrap(err, "写入文件内容失败")
	}
	return mw.Close()
}
