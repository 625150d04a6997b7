package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/ByLCY/actprint/layout"
)

const testAct = `
act Inspection v1 {
  settings {
    name: "Акт проверки"
    size: 12
  }

  fields {
    record "Дата" line 1 title-size 30% {
      value: "${act.date}"
    }
    record "Место" line 1 {
      value: "${act.place}"
    }
    record "Основание" line 2 {
      value: "распоряжение"
    }
  }
}
`

const testData = `{"act": {"date": "01.02.2024", "place": "г. Тверь"}}`

const testSignatures = `
layout: plain
signatories:
  - title: Инспектор
    name: Иванов И.И.
    after: 1
entries:
  - organization: ГУ МЧС
    employee: Петров П.П.
    signed_at: 12.03.2024 11:00
`

func writeFixtures(t *testing.T) (dir string) {
	t.Helper()
	dir = t.TempDir()
	files := map[string]string{
		"inspection.act": testAct,
		"data.json":      testData,
		"signers.yaml":   testSignatures,
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("写入 %s 失败: %v", name, err)
		}
	}
	return dir
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append(args, "--log-level", "error"))
	err := root.Execute()
	return out.String(), err
}

func cellTexts(doc *layout.Document) []string {
	var texts []string
	for _, s := range doc.Sections {
		for _, t := range s.Tables() {
			for _, row := range t.Rows {
				for _, c := range row.Cells {
					if txt := c.Text(); txt != "" {
						texts = append(texts, txt)
					}
				}
			}
		}
	}
	return texts
}

func TestRenderDebugJSON(t *testing.T) {
	dir := writeFixtures(t)
	out, err := execute(t, "render", "inspection",
		"--root", dir,
		"--data", filepath.Join(dir, "data.json"),
		"--signatures", filepath.Join(dir, "signers.yaml"),
		"--metrics", "estimate",
		"--debug", "-",
	)
	if err != nil {
		t.Fatalf("render 失败: %v\n%s", err, out)
	}

	var doc layout.Document
	if err := json.Unmarshal([]byte(out), &doc); err != nil {
		t.Fatalf("输出不是排版树 JSON: %v\n%s", err, out)
	}
	if len(doc.Sections) != 1 {
		t.Fatalf("应只有一个节, got %d", len(doc.Sections))
	}
	joined := strings.Join(cellTexts(&doc), "|")
	for _, want := range []string{"01.02.2024", "г. Тверь", "Иванов И.И.", "распоряжение", "Петров П.П."} {
		if !strings.Contains(joined, want) {
			t.Fatalf("排版结果缺少 %q: %s", want, joined)
		}
	}
	if strings.Index(joined, "Иванов И.И.") > strings.Index(joined, "распоряжение") {
		t.Fatalf("签名应插入第 1 行之后: %s", joined)
	}
}

func TestRenderWritesDebugFile(t *testing.T) {
	dir := writeFixtures(t)
	path := filepath.Join(dir, "out.json")
	if _, err := execute(t, "render", filepath.Join(dir, "inspection.act"), "--metrics", "estimate", "--debug", path); err != nil {
		t.Fatalf("render 失败: %v", err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("调试文件未生成: %v", err)
	}
	if !bytes.Contains(raw, []byte(`"sections"`)) {
		t.Fatalf("调试文件内容不符: %s", raw)
	}
}

func TestRenderRequiresOutput(t *testing.T) {
	dir := writeFixtures(t)
	if _, err := execute(t, "render", "inspection", "--root", dir); err == nil {
		t.Fatalf("未指定输出时应返回错误")
	}
}

func TestRenderMetricsFromEnvironment(t *testing.T) {
	dir := writeFixtures(t)
	t.Setenv("ACTPRINT_RENDER_METRICS", "bogus")
	_, err := execute(t, "render", "inspection", "--root", dir, "--debug", "-")
	if err == nil || !strings.Contains(err.Error(), "bogus") {
		t.Fatalf("应使用环境变量中的测量后端: %v", err)
	}
}

func TestFlagOverridesEnvironment(t *testing.T) {
	dir := writeFixtures(t)
	t.Setenv("ACTPRINT_RENDER_METRICS", "bogus")
	if _, err := execute(t, "render", "inspection", "--root", dir, "--debug", "-", "--metrics", "estimate"); err != nil {
		t.Fatalf("命令行参数应优先于环境变量: %v", err)
	}
}

func TestConfigFile(t *testing.T) {
	dir := writeFixtures(t)
	config := filepath.Join(dir, "actprint.yaml")
	if err := os.WriteFile(config, []byte("metrics: estimate\nlog-format: json\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := execute(t, "render", "inspection", "--root", dir, "--debug", "-", "--config", config); err != nil {
		t.Fatalf("应从配置文件读取测量后端: %v", err)
	}
}

func TestInspectTable(t *testing.T) {
	dir := writeFixtures(t)
	out, err := execute(t, "inspect", "inspection", "--root", dir, "--signatures", filepath.Join(dir, "signers.yaml"))
	if err != nil {
		t.Fatalf("inspect 失败: %v", err)
	}
	var rows []string
	for _, ln := range strings.Split(out, "\n") {
		if strings.HasPrefix(ln, "|") && !strings.Contains(ln, "KIND") {
			rows = append(rows, ln)
		}
	}
	if len(rows) != 4 {
		t.Fatalf("应输出 4 个字段:\n%s", out)
	}
	if !strings.Contains(rows[2], "signature") || !strings.Contains(rows[2], "Инспектор") {
		t.Fatalf("签名应排在第 1 行字段之后:\n%s", out)
	}
}

func TestInspectJSON(t *testing.T) {
	dir := writeFixtures(t)
	out, err := execute(t, "inspect", "inspection", "--root", dir, "--format", "json")
	if err != nil {
		t.Fatalf("inspect 失败: %v", err)
	}
	var fields []layout.Field
	if err := json.Unmarshal([]byte(out), &fields); err != nil {
		t.Fatalf("输出不是字段 JSON: %v", err)
	}
	if len(fields) != 3 || fields[0].Name != "Дата" || !fields[0].Line.Same(fields[1].Line) {
		t.Fatalf("字段序列不符: %+v", fields)
	}
}

func TestConfigureLogger(t *testing.T) {
	for _, tc := range []struct {
		level, format string
		ok            bool
	}{
		{"debug", "text", true},
		{"warn", "json", true},
		{"loud", "text", false},
		{"info", "xml", false},
	} {
		err := configureLogger(logrus.New(), tc.level, tc.format)
		if (err == nil) != tc.ok {
			t.Fatalf("configureLogger(%q, %q) = %v", tc.level, tc.format, err)
		}
	}
}
