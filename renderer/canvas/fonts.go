package canvasrenderer

import (
	"fmt"

	"github.com/tdewolff/canvas"

	"github.com/ByLCY/actprint/fonts"
	"github.com/ByLCY/actprint/layout"
	"github.com/ByLCY/actprint/metrics"
)

// symbolSample 用于估算平均字符宽度。
const symbolSample = "abcdefghijklmnopqrstuvwxyzабвгдеёжзийклмнопрстуфхцчшщъыьэюя"

type fontFamilyEntry struct {
	family *canvas.FontFamily
	loaded map[canvas.FontStyle]bool
}

// fontFace 返回 attrs 对应的字体面。样式文件缺失时使用常规体。
func (r *Renderer) fontFace(attrs layout.FontAttrs) (*canvas.FontFace, error) {
	if attrs.Size <= 0 {
		return nil, fmt.Errorf("字号 %g 无效", attrs.Size)
	}
	name := attrs.Family
	if name == "" {
		name = r.family
	}
	style := fontStyle(attrs.Bold, attrs.Italic)
	family, style, err := r.ensureFontFamily(name, style)
	if err != nil {
		return nil, err
	}
	return family.Face(attrs.Size, canvas.Black, style, canvas.FontNormal), nil
}

func (r *Renderer) ensureFontFamily(name string, style canvas.FontStyle) (*canvas.FontFamily, canvas.FontStyle, error) {
	r.fontMu.Lock()
	defer r.fontMu.Unlock()

	entry, ok := r.fontFamilies[name]
	if !ok {
		entry = &fontFamilyEntry{family: canvas.NewFontFamily(name), loaded: map[canvas.FontStyle]bool{}}
		r.fontFamilies[name] = entry
	}
	if entry.loaded[style] {
		return entry.family, style, nil
	}
	if err := r.loadStyle(entry, name, style); err != nil {
		if style == canvas.FontRegular {
			return nil, canvas.FontRegular, err
		}
		if entry.loaded[canvas.FontRegular] {
			return entry.family, canvas.FontRegular, nil
		}
		if err := r.loadStyle(entry, name, canvas.FontRegular); err != nil {
			return nil, canvas.FontRegular, err
		}
		return entry.family, canvas.FontRegular, nil
	}
	return entry.family, style, nil
}

func (r *Renderer) loadStyle(entry *fontFamilyEntry, name string, style canvas.FontStyle) error {
	bold := style&canvas.FontBold == canvas.FontBold
	italic := style&canvas.FontItalic == canvas.FontItalic
	path, err := r.locator.Find(name, bold, italic)
	if err != nil {
		return err
	}
	data, err := fonts.Load(path)
	if err != nil {
		return err
	}
	if err := entry.family.LoadFont(data, 0, style); err != nil {
		return fmt.Errorf("加载字体 %s 失败: %w", path, err)
	}
	entry.loaded[style] = true
	return nil
}

func fontStyle(bold, italic bool) canvas.FontStyle {
	style := canvas.FontRegular
	if bold {
		style = canvas.FontBold
	}
	if italic {
		style |= canvas.FontItalic
	}
	return style
}

// Measure 实现 layout.TextMetrics，返回 twip。
func (r *Renderer) Measure(text string, attrs layout.FontAttrs) (float64, error) {
	face, err := r.fontFace(attrs)
	if err != nil {
		return 0, err
	}
	return layout.MMToTwip(face.TextWidth(text)), nil
}

// SymbolWidth 返回拉丁与西里尔小写字母的平均宽度（twip）。
func (r *Renderer) SymbolWidth(attrs layout.FontAttrs) (float64, error) {
	face, err := r.fontFace(attrs)
	if err != nil {
		return 0, err
	}
	return layout.MMToTwip(face.TextWidth(symbolSample)) / float64(len([]rune(symbolSample))), nil
}

// WrapLines 按真实字形宽度贪心折行，width 为 twip。
func (r *Renderer) WrapLines(text string, width float64, attrs layout.FontAttrs) ([]string, error) {
	face, err := r.fontFace(attrs)
	if err != nil {
		return nil, err
	}
	return metrics.Wrap(text, layout.TwipToMM(width), face.TextWidth), nil
}
