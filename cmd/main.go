// Package main 为 imgfans 图床提供命令行接口
// 支持上传 URL、base64 data URI、本地文件或标准输入，并输出直链、Markdown、HTML、BBCode 等引用代码
package main

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
)

// version 是应用程序版本，通常在构建时设置
var version = "v0.1.0"

// formatUsage 输出格式说明
const formatUsage = "输出格式: table(全部引用,默认) / direct / download / markdown / html / bbcode / json"

func main() {
	app := &cli.App{
		Name:    "imgfans",
		Version: strings.TrimSpace(version),
		Usage:   "上传图片到 imgfans 图床并输出引用代码",
		Description: "一个用于上传图片到 imgfans 图床的命令行工具。\n" +
			"支持远程 URL、base64 data URI、本地文件以及标准输入。\n\n" +
			"使用示例:\n" +
			"  imgfans upload ./cover.png\n" +
			"  imgfans upload https://example.com/a.jpg --format markdown\n" +
			"  cat a.png | imgfans upload - --name a.png\n" +
			"  imgfans refs result.json",
		// 全局标志，适用于所有子命令
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "指定配置文件路径",
				Value:   ".env",
			},
			&cli.StringFlag{
				Name:  "token",
				Usage: "API Token（覆盖 IMGFANS_TOKEN）",
			},
			&cli.StringFlag{
				Name:  "base-url",
				Usage: "API 地址（覆盖 IMGFANS_BASE_URL）",
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "单次上传超时（覆盖 IMGFANS_TIMEOUT）",
				Value: 120 * time.Second,
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "输出请求调试日志",
			},
		},
		Before:    loadEnvFile,
		ArgsUsage: "<输入>",
		// 未指定子命令时的默认操作 - 作为上传处理
		Action: func(ctx *cli.Context) error {
			if ctx.NArg() == 0 {
				cli.ShowAppHelp(ctx)
				return cli.Exit("\n错误: 请指定要上传的图片\n\n"+
					"使用示例:\n"+
					"  imgfans upload <文件路径|URL|data URI|->\n\n"+
					"运行 'imgfans help' 查看完整帮助信息", 1)
			}
			return handleUploadCommand(ctx, ctx.Args().First())
		},
		Commands: []*cli.Command{
			{
				Name:    "init",
				Aliases: []string{"i"},
				Usage:   "创建环境变量配置文件",
				Description: "在当前目录创建 .env 示例文件，包含所有配置项说明。\n\n" +
					"示例:\n" +
					"  imgfans init\n" +
					"  imgfans init --force  # 强制覆盖已存在的文件",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "force",
						Aliases: []string{"f"},
						Usage:   "强制覆盖已存在的配置文件",
					},
				},
				Action: handleInitCommand,
			},

			{
				Name:      "upload",
				Aliases:   []string{"up", "u"},
				Usage:     "上传一张图片",
				ArgsUsage: "<文件路径|URL|data URI|->",
				Description: "识别输入类型并上传到图床，识别顺序固定：\n" +
					"  1. http:// 或 https:// 开头 -> 下载后上传\n" +
					"  2. data:<mime>;base64,<数据> -> 解码后上传\n" +
					"  3. 已存在的本地文件 -> 读取后上传\n" +
					"  -  表示从标准输入读取\n\n" +
					"示例:\n" +
					"  imgfans upload ./a.png\n" +
					"  imgfans up https://example.com/a.jpg -f markdown\n" +
					"  imgfans up ./a.png --md-out gallery.md",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "name",
						Aliases: []string{"n"},
						Usage:   "上传后的文件名",
					},
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   formatUsage,
					},
					&cli.StringFlag{
						Name:  "md-out",
						Usage: "将 Markdown 引用追加到指定文件",
					},
					&cli.BoolFlag{
						Name:  "no-cache",
						Usage: "忽略上传缓存，强制重新上传",
					},
				},
				Action: func(ctx *cli.Context) error {
					if ctx.NArg() == 0 {
						return cli.Exit("错误: 请指定要上传的图片\n\n示例: imgfans upload ./a.png", 1)
					}
					return handleUploadCommand(ctx, ctx.Args().First())
				},
			},

			{
				Name:      "refs",
				Aliases:   []string{"r"},
				Usage:     "从保存的上传结果中读取引用代码",
				ArgsUsage: "<result.json|->",
				Description: "读取 'imgfans upload -f json' 保存的结果并输出引用代码。\n\n" +
					"示例:\n" +
					"  imgfans upload ./a.png -f json > a.json\n" +
					"  imgfans refs a.json -f html",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   formatUsage,
						Value:   "table",
					},
				},
				Action: func(ctx *cli.Context) error {
					if ctx.NArg() == 0 {
						return cli.Exit("错误: 请指定结果文件\n\n示例: imgfans refs a.json", 1)
					}
					return handleRefsCommand(ctx, ctx.Args().First())
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// loadEnvFile 加载 .env 配置文件
// 默认文件不存在时忽略，显式指定的文件不存在时报错
func loadEnvFile(ctx *cli.Context) error {
	path := ctx.String("config")
	if _, err := os.Stat(path); err != nil {
		if ctx.IsSet("config") {
			return cli.Exit(fmt.Sprintf("❌ 配置文件不存在: %s", path), 1)
		}
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return cli.Exit(fmt.Sprintf("❌ 加载配置文件失败: %v", err), 1)
	}
	return nil
}
