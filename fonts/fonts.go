// Package fonts 在本机字体目录中按字族名与样式查找字体文件。
// Times New Roman 缺失时依次回退到度量兼容的 Liberation Serif、Tinos 与 DejaVu Serif。
package fonts

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// ErrNotFound 表示任何候选字体文件都不存在。
var ErrNotFound = errors.New("fonts: 找不到字体文件")

// DefaultDirs 是常见的系统字体目录；以 ~ 开头的路径相对用户主目录。
var DefaultDirs = []string{
	"/usr/share/fonts",
	"/usr/local/share/fonts",
	"~/.fonts",
	"~/.local/share/fonts",
	"/Library/Fonts",
	"/System/Library/Fonts",
	`C:\Windows\Fonts`,
}

var aliases = map[string][]string{
	"timesnewroman": {"timesnewroman", "times", "liberationserif", "tinos", "dejavuserif"},
	"arial":         {"arial", "liberationsans", "arimo", "dejavusans"},
	"couriernew":    {"couriernew", "cour", "liberationmono", "cousine", "dejavusansmono"},
}

// serif 是未知字族的最终回退。
var serif = aliases["timesnewroman"]

var styleSuffixes = map[[2]bool][]string{
	{false, false}: {"", "regular", "book", "roman"},
	{true, false}:  {"bold", "bd", "b"},
	{false, true}:  {"italic", "i", "oblique"},
	{true, true}:   {"bolditalic", "bi", "z", "boldoblique"},
}

// Locator 扫描字体目录并缓存索引，可被并发使用。
type Locator struct {
	dirs []string

	once  sync.Once
	index map[string]string
}

// NewLocator 使用给定目录；dirs 为空时使用 DefaultDirs。
func NewLocator(dirs ...string) *Locator {
	if len(dirs) == 0 {
		dirs = DefaultDirs
	}
	return &Locator{dirs: dirs}
}

// Find 返回 family 在指定样式下的字体文件路径。粗斜体缺失时退回常规体，
// 字族缺失时依次尝试别名与衬线回退。
func (l *Locator) Find(family string, bold, italic bool) (string, error) {
	l.once.Do(l.scan)

	key := normalize(family)
	candidates := append([]string{key}, aliases[key]...)
	candidates = append(candidates, serif...)

	styles := [][2]bool{{bold, italic}}
	if bold || italic {
		styles = append(styles, [2]bool{false, false})
	}
	for _, style := range styles {
		for _, name := range candidates {
			for _, suffix := range styleSuffixes[style] {
				if path, ok := l.index[name+suffix]; ok {
					return path, nil
				}
			}
		}
	}
	return "", fmt.Errorf("%w: %s", ErrNotFound, family)
}

// Len 返回已索引的字体文件数。
func (l *Locator) Len() int {
	l.once.Do(l.scan)
	return len(l.index)
}

func (l *Locator) scan() {
	l.index = map[string]string{}
	home, _ := os.UserHomeDir()
	for _, dir := range l.dirs {
		if rest, ok := strings.CutPrefix(dir, "~"); ok {
			if home == "" {
				continue
			}
			dir = filepath.Join(home, rest)
		}
		_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				if d != nil && d.IsDir() {
					return fs.SkipDir
				}
				return nil
			}
			if d.IsDir() {
				return nil
			}
			ext := strings.ToLower(filepath.Ext(path))
			if ext != ".ttf" && ext != ".otf" {
				return nil
			}
			key := normalize(strings.TrimSuffix(d.Name(), filepath.Ext(d.Name())))
			// 先出现的目录优先。
			if _, ok := l.index[key]; !ok {
				l.index[key] = path
			}
			return nil
		})
	}
}

// normalize 转为小写并去掉空格、连字符与下划线。
func normalize(name string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '_':
			return -1
		}
		return r
	}, strings.ToLower(strings.TrimSpace(name)))
}

// Load 读取字体文件。
func Load(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取字体 %s 失败: %w", path, err)
	}
	return data, nil
}
