package metrics

import (
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ByLCY/actprint/layout"
)

var font12 = layout.FontAttrs{Family: "Times New Roman", Size: 12}

// runeWidth 让每个字符宽 1，便于验证折行。
func runeWidth(s string) float64 { return float64(len([]rune(s))) }

func TestWrap(t *testing.T) {
	cases := []struct {
		name  string
		text  string
		limit float64
		want  []string
	}{
		{"空白处断行", "aa bb cc", 5, []string{"aa bb", "cc"}},
		{"长词拆分", "abcdefgh", 3, []string{"abc", "def", "gh"}},
		{"显式换行", "ab\n\ncd", 10, []string{"ab", "", "cd"}},
		{"无限宽", "aa bb", 0, []string{"aa bb"}},
		{"行首空白被丢弃", "aaaa   bb", 4, []string{"aaaa", "bb"}},
		{"西里尔字母", "Объект защиты", 7, []string{"Объект", "защиты"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Wrap(tc.text, tc.limit, runeWidth)
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Fatalf("折行结果不符 (-want +got):\n%s", diff)
			}
		})
	}
}

func TestEstimatorMeasure(t *testing.T) {
	e := NewEstimator()
	cases := []struct {
		text string
		want float64
	}{
		{"ab", 2 * 0.5 * 240},
		{"漢字", 2 * 1.0 * 240},
		{"A", 0.66 * 240},
		{"a b", (0.5 + 0.28 + 0.5) * 240},
		{"", 0},
	}
	for _, tc := range cases {
		got, err := e.Measure(tc.text, font12)
		if err != nil {
			t.Fatalf("Measure(%q) 失败: %v", tc.text, err)
		}
		if diff := got - tc.want; diff > 1e-9 || diff < -1e-9 {
			t.Fatalf("Measure(%q) = %g, want %g", tc.text, got, tc.want)
		}
	}

	// 组合形式与预组合形式宽度一致。
	decomposed, _ := e.Measure("е\u0308", font12)
	composed, _ := e.Measure("\u0451", font12)
	if decomposed != composed {
		t.Fatalf("NFC 规范化后宽度应一致: %g != %g", decomposed, composed)
	}

	bold := font12
	bold.Bold = true
	plain, _ := e.Measure("текст", font12)
	heavy, _ := e.Measure("текст", bold)
	if heavy <= plain {
		t.Fatalf("粗体应更宽: %g <= %g", heavy, plain)
	}
}

func TestEstimatorErrors(t *testing.T) {
	e := NewEstimator()
	if _, err := e.Measure("x", layout.FontAttrs{}); err == nil {
		t.Fatalf("字号为 0 时应返回错误")
	}
	if _, err := (&Estimator{}).SymbolWidth(font12); err == nil {
		t.Fatalf("零值估算器应返回错误")
	}
	w, err := e.SymbolWidth(font12)
	if err != nil || w != 120 {
		t.Fatalf("SymbolWidth = %g, %v", w, err)
	}
}

func TestEstimatorWrapLines(t *testing.T) {
	e := NewEstimator()
	// 每个小写字母 120 twip，空格 67.2 twip。
	lines, err := e.WrapLines("aaaa bbbb", 600, font12)
	if err != nil {
		t.Fatalf("WrapLines 失败: %v", err)
	}
	if diff := cmp.Diff([]string{"aaaa", "bbbb"}, lines); diff != "" {
		t.Fatalf("折行结果不符 (-want +got):\n%s", diff)
	}
}

type countingMetrics struct {
	mu       sync.Mutex
	measures int
	wraps    int
	fail     bool
}

func (m *countingMetrics) Measure(text string, font layout.FontAttrs) (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.measures++
	if m.fail {
		return 0, errors.New("boom")
	}
	return float64(len([]rune(text))) * 100, nil
}

func (m *countingMetrics) SymbolWidth(layout.FontAttrs) (float64, error) { return 100, nil }

func (m *countingMetrics) WrapLines(text string, width float64, _ layout.FontAttrs) ([]string, error) {
	m.mu.Lock()
	m.wraps++
	m.mu.Unlock()
	return strings.Fields(text), nil
}

func TestCacheHitsAndErrors(t *testing.T) {
	inner := &countingMetrics{}
	c, err := NewCache(inner, 8)
	if err != nil {
		t.Fatalf("创建缓存失败: %v", err)
	}
	for range 3 {
		if w, err := c.Measure("abc", font12); err != nil || w != 300 {
			t.Fatalf("Measure = %g, %v", w, err)
		}
	}
	if inner.measures != 1 || c.Len() != 1 {
		t.Fatalf("重复测量应命中缓存: measures=%d len=%d", inner.measures, c.Len())
	}
	bold := font12
	bold.Bold = true
	if _, err := c.Measure("abc", bold); err != nil || inner.measures != 2 {
		t.Fatalf("不同字体属性应分别缓存")
	}

	lines, _ := c.WrapLines("a b", 100, font12)
	lines[0] = "changed"
	again, _ := c.WrapLines("a b", 100, font12)
	if again[0] != "a" || inner.wraps != 1 {
		t.Fatalf("折行缓存应返回副本且只计算一次: %v wraps=%d", again, inner.wraps)
	}

	failing := &countingMetrics{fail: true}
	fc, _ := NewCache(failing, 8)
	for range 2 {
		if _, err := fc.Measure("x", font12); err == nil {
			t.Fatalf("应透传测量错误")
		}
	}
	if failing.measures != 2 {
		t.Fatalf("错误不应被缓存: %d", failing.measures)
	}

	if _, err := NewCache(nil, 0); err == nil {
		t.Fatalf("后端为空时应返回错误")
	}
}

func TestCacheConcurrentUse(t *testing.T) {
	c, err := NewCache(NewEstimator(), 0)
	if err != nil {
		t.Fatalf("创建缓存失败: %v", err)
	}
	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range 100 {
				if _, err := c.Measure(strings.Repeat("я", (i+j)%10+1), font12); err != nil {
					t.Errorf("并发测量失败: %v", err)
					return
				}
			}
		}()
	}
	wg.Wait()
	if c.Len() != 10 {
		t.Fatalf("应缓存 10 个不同文本, got %d", c.Len())
	}
}
