package imgbed

import (
	"fmt"

	"github.com/Wsine/imgfans/core"
)

// AllReferences 返回值中的键，与响应中的键一一对应
var referenceKeys = []struct {
	wire string
	name string
}{
	{RefDirectLink, "directLink"},
	{RefDownloadLink, "downloadLink"},
	{RefBBCode, "bbcode"},
	{RefHTML, "html"},
	{RefMarkdown, "markdown"},
}

// Lookup 读取指定类型的引用代码
// 响应缺少 file、file.references 或该类型时返回 KindInvalidResponse 错误
func Lookup(result *UploadResult, kind string) (string, error) {
	refs, err := referencesOf(result)
	if err != nil {
		return "", err
	}
	ref, ok := refs[kind]
	if !ok {
		return "", core.NewError(core.KindInvalidResponse,
			fmt.Sprintf("响应缺少 file.references.%s", kind), nil)
	}
	return ref.Code, nil
}

// DirectLink 图片直链
func DirectLink(result *UploadResult) (string, error) {
	return Lookup(result, RefDirectLink)
}

// DownloadLink 下载链接
func DownloadLink(result *UploadResult) (string, error) {
	return Lookup(result, RefDownloadLink)
}

// BBCode 论坛代码
func BBCode(result *UploadResult) (string, error) {
	return Lookup(result, RefBBCode)
}

// HTMLCode HTML 代码
func HTMLCode(result *UploadResult) (string, error) {
	return Lookup(result, RefHTML)
}

// MarkdownCode Markdown 代码
func MarkdownCode(result *UploadResult) (string, error) {
	return Lookup(result, RefMarkdown)
}

// AllReferences 返回全部五种引用代码
// 键固定为 directLink、downloadLink、bbcode、html、markdown，任一缺失即返回错误
func AllReferences(result *UploadResult) (map[string]string, error) {
	all := make(map[string]string, len(referenceKeys))
	for _, k := range referenceKeys {
		code, err := Lookup(result, k.wire)
		if err != nil {
			return nil, err
		}
		all[k.name] = code
	}
	return all, nil
}

// ReferenceNames AllReferences 返回的键，按固定顺序
func ReferenceNames() []string {
	names := make([]string, 0, len(referenceKeys))
	for _, k := range referenceKeys {
		names = append(names, k.name)
	}
	return names
}

func referencesOf(result *UploadResult) (ReferenceSet, error) {
	if result == nil || result.File == nil {
		return nil, core.NewError(core.KindInvalidResponse, "响应缺少 file 字段", nil)
	}
	if result.File.References == nil {
		return nil, core.NewError(core.KindInvalidResponse, "响应缺少 file.references 字段", nil)
	}
	return result.File.References, nil
}
