package layout

import (
	"errors"
	"math"
	"testing"
)

func TestResolveLineSpacing(t *testing.T) {
	cases := map[string]float64{
		"":    1,
		"1":   1,
		"2":   240,
		"1.5": 120,
		"1,5": 120,
		"3":   480,
	}
	for in, want := range cases {
		got, err := resolveLineSpacing(in)
		if err != nil {
			t.Fatalf("行距 %q 解析失败: %v", in, err)
		}
		if math.Abs(got-want) > 1e-9 {
			t.Fatalf("行距 %q 期望 %g，实际 %g", in, want, got)
		}
	}

	_, err := resolveLineSpacing("полуторный")
	var cfgErr *ConfigurationError
	if !errors.As(err, &cfgErr) || cfgErr.Setting != "lineSpacing" {
		t.Fatalf("无法解析的行距应返回 ConfigurationError，实际 %v", err)
	}
}

func TestDefaultStyle(t *testing.T) {
	cfg := DefaultStyle()
	if cfg.Section.PageWidth != 11906 || cfg.Section.Orientation != "portrait" {
		t.Fatalf("默认应为 A4 纵向: %+v", cfg.Section)
	}
	want := 11906 - 3*TwipsPerCM - 1.5*TwipsPerCM
	if got := cfg.Section.ContentWidth(); math.Abs(got-want) > 1e-9 {
		t.Fatalf("可用宽度期望 %g，实际 %g", want, got)
	}
	if cfg.CommentsSize != 9 {
		t.Fatalf("注释字号应为字号减 3，实际 %g", cfg.CommentsSize)
	}
	if cfg.CellPadding != DefaultCellPadding || cfg.Placeholder != DefaultPlaceholder {
		t.Fatalf("默认内边距或占位文本不符: %+v", cfg)
	}
}

func TestResolveStyleOverrides(t *testing.T) {
	placeholder := "—"
	padding := 0.0
	cfg, err := ResolveStyle(DocSettings{
		LeftIndent:  Length{Value: 2},
		RightIndent: Length{Value: 10, Unit: UnitMM},
		LineSpacing: "2",
		FontSize:    14,
		Orientation: "Landscape",
		Placeholder: &placeholder,
		CellPadding: &padding,
		Border:      "2px solid black",
	})
	if err != nil {
		t.Fatalf("解析样式失败: %v", err)
	}
	if cfg.Section.PageWidth != 16838 || cfg.Section.PageHeight != 11906 {
		t.Fatalf("横向应交换宽高: %+v", cfg.Section)
	}
	if math.Abs(cfg.Section.MarginLeft-2*TwipsPerCM) > 1e-9 || math.Abs(cfg.Section.MarginRight-10*TwipsPerMM) > 1e-9 {
		t.Fatalf("边距换算不符: %+v", cfg.Section)
	}
	if cfg.Spacing != 240 || cfg.CommentsSize != 11 {
		t.Fatalf("行距或注释字号不符: %+v", cfg)
	}
	if cfg.Placeholder != "—" || cfg.CellPadding != 0 || cfg.Border != "2px solid black" {
		t.Fatalf("覆盖项未生效: %+v", cfg)
	}
}

func TestResolveStyleErrors(t *testing.T) {
	cases := []struct {
		name    string
		in      DocSettings
		setting string
	}{
		{"font size", DocSettings{FontSize: 0}, "fontSize"},
		{"orientation", DocSettings{FontSize: 12, Orientation: "diagonal"}, "orientation"},
		{"margins", DocSettings{FontSize: 12, LeftIndent: Length{Value: 15}, RightIndent: Length{Value: 10}}, "margins"},
		{"spacing", DocSettings{FontSize: 12, LineSpacing: "x"}, "lineSpacing"},
	}
	for _, tc := range cases {
		_, err := ResolveStyle(tc.in)
		var cfgErr *ConfigurationError
		if !errors.As(err, &cfgErr) {
			t.Fatalf("%s: 期望 ConfigurationError，实际 %v", tc.name, err)
		}
		if cfgErr.Setting != tc.setting {
			t.Fatalf("%s: 期望配置项 %s，实际 %s", tc.name, tc.setting, cfgErr.Setting)
		}
	}
}
