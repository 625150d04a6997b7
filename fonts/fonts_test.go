package fonts

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func touch(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("创建目录失败: %v", err)
	}
	if err := os.WriteFile(path, []byte("font"), 0o644); err != nil {
		t.Fatalf("写入字体文件失败: %v", err)
	}
	return path
}

func TestLocatorFind(t *testing.T) {
	dir := t.TempDir()
	times := touch(t, dir, "times.ttf")
	timesBold := touch(t, dir, "timesbd.ttf")
	libItalic := touch(t, dir, "liberation/LiberationSerif-Italic.ttf")
	arimo := touch(t, dir, "Arimo-Regular.otf")
	touch(t, dir, "readme.txt")

	l := NewLocator(dir)
	if l.Len() != 4 {
		t.Fatalf("应索引 4 个字体文件, got %d", l.Len())
	}

	cases := []struct {
		family       string
		bold, italic bool
		want         string
	}{
		{"Times New Roman", false, false, times},
		{"Times New Roman", true, false, timesBold},
		{"Times New Roman", false, true, libItalic},
		{"Times New Roman", true, true, times},
		{"Arial", false, false, arimo},
		{"PT Astra Serif", false, false, times},
	}
	for _, tc := range cases {
		got, err := l.Find(tc.family, tc.bold, tc.italic)
		if err != nil {
			t.Fatalf("Find(%q, %v, %v) 失败: %v", tc.family, tc.bold, tc.italic, err)
		}
		if got != tc.want {
			t.Fatalf("Find(%q, %v, %v) = %s, want %s", tc.family, tc.bold, tc.italic, got, tc.want)
		}
	}
}

func TestLocatorNotFound(t *testing.T) {
	l := NewLocator(t.TempDir(), filepath.Join(t.TempDir(), "absent"))
	if _, err := l.Find("Times New Roman", false, false); !errors.Is(err, ErrNotFound) {
		t.Fatalf("应返回 ErrNotFound, got %v", err)
	}
}

func TestLoad(t *testing.T) {
	path := touch(t, t.TempDir(), "a.ttf")
	data, err := Load(path)
	if err != nil || string(data) != "font" {
		t.Fatalf("Load = %q, %v", data, err)
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.ttf")); err == nil {
		t.Fatalf("文件不存在时应返回错误")
	}
}
