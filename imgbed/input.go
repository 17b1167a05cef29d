// Package imgbed - 输入识别与归一化
// 将 URL、data URI、本地路径、字节切片、Blob、Reader 统一转换为可上传的 Source
package imgbed

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/Wsine/imgfans/core"
	"github.com/pkg/errors"
)

// DefaultFilename 无法推导文件名时使用的默认值
const DefaultFilename = "image.png"

// dataURIPattern 匹配 data:<mime>;base64,<payload>
var dataURIPattern = regexp.MustCompile(`^data:([^;,]+);base64,(.+)$`)

// Input 上传输入，仅能由本包中的类型实现
type Input interface {
	isInput()
}

// URLInput 远程图片地址
type URLInput struct{ URL string }

// DataURIInput base64 data URI
type DataURIInput struct {
	MimeType string
	Payload  string
}

// PathInput 已存在的本地文件
type PathInput struct{ Path string }

// BytesInput 内存中的图片数据
type BytesInput struct{ Data []byte }

// BlobInput 可按需打开的二进制对象
type BlobInput struct{ Blob Blob }

// StreamInput 字节流
type StreamInput struct{ Reader io.Reader }

// unknownString 无法识别的字符串
type unknownString struct{ value string }

// unsupportedType 不支持的输入类型
type unsupportedType struct{ value any }

func (URLInput) isInput()        {}
func (DataURIInput) isInput()    {}
func (PathInput) isInput()       {}
func (BytesInput) isInput()      {}
func (BlobInput) isInput()       {}
func (StreamInput) isInput()     {}
func (unknownString) isInput()   {}
func (unsupportedType) isInput() {}

// Blob 可按需打开的二进制对象
type Blob interface {
	Open() (io.ReadCloser, error)
}

// ParseInput 按固定优先级识别输入，先匹配者生效：
// URL 前缀 -> data URI -> 已存在的本地文件 -> []byte -> Blob -> io.Reader
// 已经是 Input 的值原样返回
func ParseInput(v any) Input {
	switch in := v.(type) {
	case Input:
		return in
	case string:
		return parseString(in)
	case []byte:
		return BytesInput{Data: in}
	case Blob:
		return BlobInput{Blob: in}
	case io.Reader:
		return StreamInput{Reader: in}
	default:
		return unsupportedType{value: v}
	}
}

func parseString(s string) Input {
	if strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://") {
		return URLInput{URL: s}
	}
	if m := dataURIPattern.FindStringSubmatch(s); m != nil {
		return DataURIInput{MimeType: m[1], Payload: m[2]}
	}
	if info, err := os.Stat(s); err == nil && info.Mode().IsRegular() {
		return PathInput{Path: s}
	}
	return unknownString{value: s}
}

// Source 可上传的字节源
type Source struct {
	Reader   io.Reader // 文件内容
	Filename string    // multipart 中的文件名
	MimeType string    // multipart 分段的 Content-Type
	closer   io.Closer
}

// Close 释放底层文件句柄
func (s *Source) Close() error {
	if s == nil || s.closer == nil {
		return nil
	}
	return s.closer.Close()
}

// Normalizer 输入归一化器
type Normalizer struct {
	client *http.Client
}

// NewNormalizer 创建归一化器，client 用于下载 URL 输入
func NewNormalizer(client *http.Client) *Normalizer {
	if client == nil {
		client = http.DefaultClient
	}
	return &Normalizer{client: client}
}

// Normalize 将输入转换为 Source
// filename 非空时优先使用，否则按输入类型推导
func (n *Normalizer) Normalize(ctx context.Context, in Input, filename string) (*Source, error) {
	switch in := in.(type) {
	case URLInput:
		return n.fetch(ctx, in.URL, filename)
	case DataURIInput:
		data, err := base64.StdEncoding.DecodeString(in.Payload)
		if err != nil {
			return nil, core.NewError(core.KindInvalidInput, "base64 数据解码失败", err)
		}
		return &Source{
			Reader:   bytes.NewReader(data),
			Filename: pick(filename, DefaultFilename),
			MimeType: in.MimeType,
		}, nil
	case PathInput:
		f, err := os.Open(in.Path)
		if err != nil {
			return nil, core.NewError(core.KindInvalidInput, fmt.Sprintf("打开本地文件失败: %s", in.Path), err)
		}
		src, err := sniffed(f, pick(filename, filepath.Base(in.Path)))
		if err != nil {
			f.Close()
			return nil, err
		}
		src.closer = f
		return src, nil
	case BytesInput:
		return &Source{
			Reader:   bytes.NewReader(in.Data),
			Filename: pick(filename, DefaultFilename),
			MimeType: detectMime(in.Data),
		}, nil
	case BlobInput:
		rc, err := in.Blob.Open()
		if err != nil {
			return nil, core.NewError(core.KindInvalidInput, "打开 Blob 失败", err)
		}
		src, err := sniffed(rc, pick(filename, DefaultFilename))
		if err != nil {
			rc.Close()
			return nil, err
		}
		src.closer = rc
		return src, nil
	case StreamInput:
		return sniffed(in.Reader, pick(filename, DefaultFilename))
	case unknownString:
		return nil, core.NewError(core.KindInvalidInput,
			"无法识别的输入：既不是 URL、base64 data URI，也不是已存在的本地文件", nil)
	case unsupportedType:
		return nil, core.NewError(core.KindUnsupportedInput,
			fmt.Sprintf("不支持的输入类型: %T", in.value), nil)
	default:
		return nil, core.NewError(core.KindUnsupportedInput,
			fmt.Sprintf("不支持的输入类型: %T", in), nil)
	}
}

// fetch 下载远程图片并完整读入内存，不携带 Bearer Token
func (n *Normalizer) fetch(ctx context.Context, rawURL, filename string) (*Source, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, core.NewError(core.KindInvalidInput, fmt.Sprintf("URL 格式错误: %s", rawURL), err)
	}
	resp, err := n.client.Do(req)
	if err != nil {
		return nil, core.NewTransportError(0, nil, errors.Wrapf(err, "下载 %s 失败", rawURL))
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, core.NewTransportError(resp.StatusCode, nil, errors.Wrapf(err, "读取 %s 失败", rawURL))
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, core.NewTransportError(resp.StatusCode, data,
			errors.Errorf("下载 %s 返回 %s", rawURL, resp.Status))
	}

	mimeType := ""
	if parsed, _, err := mime.ParseMediaType(resp.Header.Get("Content-Type")); err == nil {
		mimeType = parsed
	}
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = detectMime(data)
	}

	return &Source{
		Reader:   bytes.NewReader(data),
		Filename: pick(filename, urlBaseName(rawURL)),
		MimeType: mimeType,
	}, nil
}

// urlBaseName 取 URL 路径的最后一段，路径为空时返回默认文件名
func urlBaseName(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return DefaultFilename
	}
	base := path.Base(u.Path)
	if base == "." || base == "/" || base == "" {
		return DefaultFilename
	}
	return base
}

// sniffed 读取前 512 字节探测 MIME，再拼回原始流
func sniffed(r io.Reader, filename string) (*Source, error) {
	header := make([]byte, 512)
	n, err := io.ReadFull(r, header)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return nil, core.NewError(core.KindInvalidInput, "读取输入失败", err)
	}
	header = header[:n]
	mimeType := detectMime(header)
	if mimeType == "application/octet-stream" {
		if byExt := mime.TypeByExtension(filepath.Ext(filename)); byExt != "" {
			mimeType = byExt
		}
	}
	return &Source{
		Reader:   io.MultiReader(bytes.NewReader(header), r),
		Filename: filename,
		MimeType: mimeType,
	}, nil
}

func detectMime(data []byte) string {
	if len(data) == 0 {
		return "application/octet-stream"
	}
	if parsed, _, err := mime.ParseMediaType(http.DetectContentType(data)); err == nil {
		return parsed
	}
	return "application/octet-stream"
}

func pick(filename, fallback string) string {
	if strings.TrimSpace(filename) != "" {
		return filename
	}
	return fallback
}
