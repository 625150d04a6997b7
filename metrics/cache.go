package metrics

import (
	"fmt"
	"slices"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/ByLCY/actprint/layout"
)

// DefaultCacheSize 是每类测量结果缓存的条目数。
const DefaultCacheSize = 4096

type measureKey struct {
	text string
	font layout.FontAttrs
}

type wrapKey struct {
	text  string
	width float64
	font  layout.FontAttrs
}

// Cache 为任意 TextMetrics 加上 LRU 缓存。测量是纯函数，因此结果可以跨渲染复用；
// 错误不缓存。Cache 可被多个渲染并发使用。
type Cache struct {
	next    layout.TextMetrics
	widths  *lru.Cache[measureKey, float64]
	symbols *lru.Cache[layout.FontAttrs, float64]
	wraps   *lru.Cache[wrapKey, []string]
}

var _ layout.TextMetrics = (*Cache)(nil)

// NewCache 包装 next；size <= 0 时使用 DefaultCacheSize。
func NewCache(next layout.TextMetrics, size int) (*Cache, error) {
	if next == nil {
		return nil, fmt.Errorf("metrics: 被缓存的测量后端为空")
	}
	if size <= 0 {
		size = DefaultCacheSize
	}
	widths, err := lru.New[measureKey, float64](size)
	if err != nil {
		return nil, err
	}
	symbols, err := lru.New[layout.FontAttrs, float64](size)
	if err != nil {
		return nil, err
	}
	wraps, err := lru.New[wrapKey, []string](size)
	if err != nil {
		return nil, err
	}
	return &Cache{next: next, widths: widths, symbols: symbols, wraps: wraps}, nil
}

func (c *Cache) Measure(text string, font layout.FontAttrs) (float64, error) {
	key := measureKey{text: text, font: font}
	if w, ok := c.widths.Get(key); ok {
		return w, nil
	}
	w, err := c.next.Measure(text, font)
	if err != nil {
		return 0, err
	}
	c.widths.Add(key, w)
	return w, nil
}

func (c *Cache) SymbolWidth(font layout.FontAttrs) (float64, error) {
	if w, ok := c.symbols.Get(font); ok {
		return w, nil
	}
	w, err := c.next.SymbolWidth(font)
	if err != nil {
		return 0, err
	}
	c.symbols.Add(font, w)
	return w, nil
}

// WrapLines 返回缓存结果的副本，调用方可以自由修改。
func (c *Cache) WrapLines(text string, width float64, font layout.FontAttrs) ([]string, error) {
	key := wrapKey{text: text, width: width, font: font}
	if lines, ok := c.wraps.Get(key); ok {
		return slices.Clone(lines), nil
	}
	lines, err := c.next.WrapLines(text, width, font)
	if err != nil {
		return nil, err
	}
	c.wraps.Add(key, slices.Clone(lines))
	return lines, nil
}

// Len 返回已缓存的宽度条目数。
func (c *Cache) Len() int { return c.widths.Len() }
