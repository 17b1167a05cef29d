// Package cache - 上传缓存管理
// 维护 内容摘要 -> 上传结果 的映射，避免重复上传
// 缓存存储在当前工作目录的 .imgfans/ 下，便于跟随仓库提交
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/Wsine/imgfans/imgbed"
	"github.com/pkg/errors"
)

// DefaultDir 默认缓存目录名（相对于当前工作目录）
const DefaultDir = ".imgfans"

const cacheFileName = "upload-cache.json"

// Store 上传结果缓存
type Store struct {
	dir  string
	file string

	mu      sync.RWMutex
	entries map[string]*imgbed.UploadResult
	loaded  bool
	now     func() time.Time
}

// New 创建缓存，dir 为空时使用当前工作目录下的 .imgfans
func New(dir string) *Store {
	if dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			cwd = "."
		}
		dir = filepath.Join(cwd, DefaultDir)
	}
	return &Store{
		dir:     dir,
		file:    filepath.Join(dir, cacheFileName),
		entries: make(map[string]*imgbed.UploadResult),
		now:     time.Now,
	}
}

// Path 缓存文件路径
func (s *Store) Path() string {
	return s.file
}

// load 从文件加载缓存，文件不存在或损坏时视为空缓存
func (s *Store) load() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loaded {
		return
	}
	s.loaded = true

	data, err := os.ReadFile(s.file)
	if err != nil {
		return
	}
	entries := make(map[string]*imgbed.UploadResult)
	if err := json.Unmarshal(data, &entries); err != nil {
		return
	}
	s.entries = entries
}

// Get 获取缓存的上传结果，已过期的条目视为未命中
func (s *Store) Get(key string) (*imgbed.UploadResult, bool) {
	s.load()

	s.mu.RLock()
	defer s.mu.RUnlock()

	result, ok := s.entries[key]
	if !ok || result == nil || result.File.Expired(s.now()) {
		return nil, false
	}
	return result, true
}

// Put 写入缓存并持久化
func (s *Store) Put(key string, result *imgbed.UploadResult) error {
	s.load()

	s.mu.Lock()
	s.entries[key] = result
	s.mu.Unlock()

	return s.persist()
}

// Len 返回缓存条目数
func (s *Store) Len() int {
	s.load()

	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Clear 清空缓存并删除缓存文件
func (s *Store) Clear() error {
	s.mu.Lock()
	s.entries = make(map[string]*imgbed.UploadResult)
	s.loaded = true
	s.mu.Unlock()

	if err := os.Remove(s.file); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "删除缓存文件失败")
	}
	return nil
}

func (s *Store) persist() error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return errors.Wrap(err, "创建缓存目录失败")
	}

	s.mu.RLock()
	data, err := json.MarshalIndent(s.entries, "", "  ")
	s.mu.RUnlock()
	if err != nil {
		return errors.Wrap(err, "序列化缓存失败")
	}

	return os.WriteFile(s.file, data, 0o644)
}

// KeyFor 计算字符串输入的缓存键
// 本地文件按内容计算摘要，URL 与 data URI 按原始字符串计算；其余输入不缓存
func KeyFor(input string, filename string) (string, bool) {
	h := sha256.New()
	switch in := imgbed.ParseInput(input).(type) {
	case imgbed.PathInput:
		f, err := os.Open(in.Path)
		if err != nil {
			return "", false
		}
		defer f.Close()
		if _, err := io.Copy(h, f); err != nil {
			return "", false
		}
	case imgbed.URLInput, imgbed.DataURIInput:
		io.WriteString(h, input)
	default:
		return "", false
	}
	// 文件名不同视为不同的上传
	io.WriteString(h, "\x00"+strings.TrimSpace(filename))
	return hex.EncodeToString(h.Sum(nil)), true
}
