package imgbed

import "time"

// 响应中 references 的键
const (
	RefDirectLink   = "direct_link"
	RefDownloadLink = "download_link"
	RefBBCode       = "bbcode"
	RefHTML         = "html"
	RefMarkdown     = "markdown"
)

// UploadResult 上传接口的响应
type UploadResult struct {
	Success bool        `json:"success"`
	File    *FileRecord `json:"file"`
}

// FileRecord 已上传文件的信息
type FileRecord struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Size         int64        `json:"size"`
	MimeType     string       `json:"mimeType"`
	URL          string       `json:"url"`
	DownloadURL  string       `json:"downloadUrl"`
	ThumbnailURL string       `json:"thumbnailUrl"`
	References   ReferenceSet `json:"references"`
	ExpiresAt    *time.Time   `json:"expiresAt,omitempty"`
}

// ReferenceSet 引用类型 -> 引用代码
type ReferenceSet map[string]Reference

// Reference 一条预格式化的引用代码
type Reference struct {
	Label string `json:"label"`
	Code  string `json:"code"`
}

// Expired 文件是否已过期，未设置过期时间时返回 false
func (f *FileRecord) Expired(now time.Time) bool {
	return f != nil && f.ExpiresAt != nil && !now.Before(*f.ExpiresAt)
}
