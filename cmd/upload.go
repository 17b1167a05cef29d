// Package main 包含上传图片和输出引用代码的命令处理
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/88250/lute"
	"github.com/Wsine/imgfans/cache"
	"github.com/Wsine/imgfans/core"
	"github.com/Wsine/imgfans/imgbed"
	"github.com/Wsine/imgfans/utils"
	"github.com/olekukonko/tablewriter"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
)

// UploadOpts 包含上传操作的选项
type UploadOpts struct {
	name   string       // 上传后的文件名
	format string       // 输出格式
	mdOut  string       // Markdown 引用追加的文件
	store  *cache.Store // 上传缓存，nil 表示不使用
}

// uploadImage 上传单个输入，命中缓存时直接返回缓存结果
func uploadImage(ctx context.Context, platform imgbed.Platform, input string, opts *UploadOpts) (*imgbed.UploadResult, bool, error) {
	var key string
	cacheable := false
	if opts.store != nil && input != "-" {
		key, cacheable = cache.KeyFor(input, opts.name)
	}
	if cacheable {
		if result, ok := opts.store.Get(key); ok {
			return result, true, nil
		}
	}

	var source any = input
	if input == "-" {
		source = imgbed.StreamInput{Reader: os.Stdin}
	}
	result, err := platform.Upload(ctx, source, opts.name)
	if err != nil {
		return nil, false, err
	}

	if cacheable {
		if err := opts.store.Put(key, result); err != nil {
			// 缓存写入失败不影响上传结果
			log.Printf("⚠️  缓存写入失败: %v", err)
		}
	}
	return result, false, nil
}

// renderResult 按格式输出上传结果
func renderResult(w io.Writer, result *imgbed.UploadResult, format string) error {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "table":
		refs, err := imgbed.AllReferences(result)
		if err != nil {
			return err
		}
		table := tablewriter.NewWriter(w)
		table.SetHeader([]string{"类型", "代码"})
		table.SetAutoWrapText(false)
		for _, name := range imgbed.ReferenceNames() {
			table.Append([]string{name, refs[name]})
		}
		table.Render()
		return nil
	case "json":
		_, err := fmt.Fprintln(w, utils.PrettyPrint(result))
		return err
	}

	var accessor func(*imgbed.UploadResult) (string, error)
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "direct":
		accessor = imgbed.DirectLink
	case "download":
		accessor = imgbed.DownloadLink
	case "markdown", "md":
		accessor = imgbed.MarkdownCode
	case "html":
		accessor = imgbed.HTMLCode
	case "bbcode":
		accessor = imgbed.BBCode
	default:
		return errors.Errorf("未知的输出格式: %s", format)
	}
	code, err := accessor(result)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, code)
	return err
}

// appendMarkdown 将 Markdown 引用追加到文件并统一格式化
func appendMarkdown(path string, result *imgbed.UploadResult) error {
	code, err := imgbed.MarkdownCode(result)
	if err != nil {
		return err
	}

	existing, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, "读取 %s 失败", path)
	}

	markdown := strings.TrimRight(string(existing), "\n")
	if markdown != "" {
		markdown += "\n\n"
	}
	markdown += code + "\n"

	engine := lute.New(func(l *lute.Lute) {
		l.RenderOptions.AutoSpace = true
	})
	formatted := engine.FormatStr("md", markdown)

	return os.WriteFile(path, []byte(formatted), 0o644)
}

// handleUploadCommand 是上传操作的主要处理程序
// 它处理CLI标志、加载配置、验证凭据并执行上传
func handleUploadCommand(cliCtx *cli.Context, input string) error {
	config, err := core.LoadConfig(cliCtx.String("token"), cliCtx.String("base-url"))
	if err != nil {
		return cli.Exit(fmt.Sprintf("❌ 加载配置失败: %v", err), 1)
	}
	if cliCtx.IsSet("timeout") {
		config.Imgfans.Timeout = cliCtx.Duration("timeout")
	}
	if format := cliCtx.String("format"); format != "" {
		config.Output.Format = format
	}
	if cliCtx.Bool("no-cache") {
		config.Output.CacheEnabled = false
	}
	if cliCtx.Bool("verbose") {
		config.Imgfans.Logger = log.New(os.Stderr, "[imgfans] ", log.LstdFlags)
	}

	client, err := imgbed.NewClient(&config.Imgfans)
	if err != nil {
		if core.IsKind(err, core.KindConfiguration) {
			return cli.Exit("需要 API Token。请通过以下方式设置:\n"+
				"  1. 命令行参数: --token <token>\n"+
				"  2. 环境变量: IMGFANS_TOKEN\n"+
				"  3. 配置文件: imgfans init 生成 .env 后填写", 1)
		}
		return err
	}

	opts := &UploadOpts{
		format: config.Output.Format,
		mdOut:  cliCtx.String("md-out"),
	}
	if name := cliCtx.String("name"); name != "" {
		opts.name = utils.SanitizeFileName(name, imgbed.DefaultFilename)
	}
	if config.Output.CacheEnabled {
		opts.store = cache.New(config.Output.CacheDir)
	}

	result, cached, err := uploadImage(cliCtx.Context, client, input, opts)
	if err != nil {
		return cli.Exit(fmt.Sprintf("❌ %v", err), 1)
	}
	if cached {
		fmt.Fprintln(os.Stderr, "♻️  命中上传缓存，跳过上传")
	} else if result.File != nil {
		fmt.Fprintf(os.Stderr, "✅ 已上传 %s (%d 字节)\n", result.File.Name, result.File.Size)
	}

	if err := renderResult(os.Stdout, result, opts.format); err != nil {
		return cli.Exit(fmt.Sprintf("❌ %v", err), 1)
	}

	if opts.mdOut != "" {
		if err := appendMarkdown(opts.mdOut, result); err != nil {
			return cli.Exit(fmt.Sprintf("❌ 写入 Markdown 失败: %v", err), 1)
		}
		fmt.Fprintf(os.Stderr, "📄 Markdown 引用已追加到 %s\n", opts.mdOut)
	}
	return nil
}

// handleRefsCommand 读取保存的上传结果并输出引用代码
func handleRefsCommand(cliCtx *cli.Context, path string) error {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return cli.Exit(fmt.Sprintf("❌ 读取 %s 失败: %v", path, err), 1)
	}

	var result imgbed.UploadResult
	if err := json.Unmarshal(data, &result); err != nil {
		return cli.Exit(fmt.Sprintf("❌ 解析 %s 失败: %v", path, err), 1)
	}

	if err := renderResult(os.Stdout, &result, cliCtx.String("format")); err != nil {
		return cli.Exit(fmt.Sprintf("❌ %v", err), 1)
	}
	return nil
}
