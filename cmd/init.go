// Package main - 初始化配置文件功能
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

// envTemplate 环境变量配置文件模板
const envTemplate = `# ====================================
# imgfans 图床工具 - 环境变量配置
# ====================================

# ----------------------------------
# API 认证配置（必需）
# ----------------------------------
# 在 imgfans 控制台创建 API Token
IMGFANS_TOKEN=your_token_here

# ----------------------------------
# API 地址（可选）
# ----------------------------------
# 默认: https://imgfans.com/api/v1
# IMGFANS_BASE_URL=https://imgfans.com/api/v1

# 单次上传超时，Go duration 格式
# 默认: 120s
# IMGFANS_TIMEOUT=120s

# ----------------------------------
# 输出配置（可选）
# ----------------------------------
# 输出格式: table / direct / download / markdown / html / bbcode / json
# 默认: table
# IMGFANS_FORMAT=table

# ----------------------------------
# 上传缓存（可选）
# ----------------------------------
# 相同内容不重复上传，缓存保存在 .imgfans/upload-cache.json
# 值: true/false 或 1/0，默认: true
# IMGFANS_CACHE=true

# 缓存目录，默认为当前目录下的 .imgfans
# IMGFANS_CACHE_DIR=.imgfans


# ----------------------------------
# 使用说明
# ----------------------------------
# 1. 填写 IMGFANS_TOKEN
# 2. 使用配置文件运行:
#    imgfans upload <图片> --config .env
#    或者默认会自动加载当前目录的 .env 文件:
#    imgfans upload <图片>
#
# 注意: .env 文件包含敏感信息，请勿提交到 Git 仓库
`

// handleInitCommand 处理 init 命令
func handleInitCommand(ctx *cli.Context) error {
	force := ctx.Bool("force")
	filename := ".env"

	if !force {
		if _, err := os.Stat(filename); err == nil {
			return cli.Exit(fmt.Sprintf("❌ 文件 %s 已存在\n"+
				"使用 --force 参数强制覆盖，或手动删除后重试", filename), 1)
		}
	}

	if err := os.WriteFile(filename, []byte(envTemplate), 0600); err != nil {
		return cli.Exit(fmt.Sprintf("❌ 创建配置文件失败: %v", err), 1)
	}

	fmt.Println("✅ 配置文件已创建: " + filename)
	fmt.Println()
	fmt.Println("📝 后续步骤:")
	fmt.Println("  1. 编辑配置文件，填写 IMGFANS_TOKEN")
	fmt.Println("  2. 开始使用: imgfans upload <图片>")
	fmt.Println()
	fmt.Println("💡 提示:")
	fmt.Println("  - 工具会自动加载当前目录的 .env 文件")
	fmt.Println("  - 也可使用 --config 指定其他配置文件: imgfans --config my.env upload <图片>")

	return nil
}
