package utils

import (
	"encoding/json"
	"strings"
)

func PrettyPrint(i interface{}) string {
	s, _ := json.MarshalIndent(i, "", "  ")
	return string(s)
}

// SanitizeFileName 清理上传文件名中的路径分隔符和特殊字符
// 结果为空或只包含点时返回 fallback
func SanitizeFileName(name, fallback string) string {
	replacements := map[string]string{
		"/":  "-",
		"\\": "-",
		":":  "-",
		"*":  "_",
		"?":  "_",
		"\"": "'",
		"<":  "_",
		">":  "_",
		"|":  "-",
	}

	for invalid, replacement := range replacements {
		name = strings.ReplaceAll(name, invalid, replacement)
	}

	// 去掉控制字符
	name = strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, name)

	name = strings.TrimSpace(name)

	if name == "" || strings.Trim(name, ".") == "" {
		return fallback
	}

	return name
}
