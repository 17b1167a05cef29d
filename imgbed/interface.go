// Package imgbed 提供 imgfans 图床上传功能
// 包括输入归一化、multipart 上传以及响应中引用代码的读取
package imgbed

import "context"

// Platform 图床平台接口
type Platform interface {
	// Upload 识别并上传任意输入
	// input: URL、data URI、本地路径、[]byte、Blob、io.Reader 或 Input
	// filename: 文件名（可选），为空时按输入推导
	Upload(ctx context.Context, input any, filename string) (*UploadResult, error)

	// Send 上传已归一化的字节源
	Send(ctx context.Context, src *Source) (*UploadResult, error)

	// GetName 获取平台名称
	GetName() string
}

var _ Platform = (*Client)(nil)
