package layout

// 该文件定义字段模型：按合并顺序排列的字段记录以及它们的排版元数据。

import "strings"

// Kind 区分字段的排版方式。
type Kind int

const (
	KindTable Kind = iota
	KindRecord
	KindSignature
	KindSupplement
)

func (k Kind) String() string {
	switch k {
	case KindTable:
		return "table"
	case KindRecord:
		return "record"
	case KindSignature:
		return "signature"
	case KindSupplement:
		return "supplement"
	default:
		return "unknown"
	}
}

// ParseKind 将 tab_type 字符串映射为 Kind。
func ParseKind(s string) (Kind, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "table":
		return KindTable, true
	case "record":
		return KindRecord, true
	case "signature":
		return KindSignature, true
	case "supplement":
		return KindSupplement, true
	}
	return KindTable, false
}

// PrintMode 决定 table 类字段是打印为网格还是“标题-值”字符串。
type PrintMode int

const (
	PrintAsTable PrintMode = iota
	PrintAsString
)

// SizeKind 描述标题或值单元格的宽度来源。
type SizeKind int

const (
	SizeContent SizeKind = iota // 按内容测量
	SizePercent                 // 页面可用宽度的百分比
	SizeLeft                    // 按内容测量，左对齐
	SizeEndLine                 // 独占整行
	SizeString                  // 值作为连续文本排版（按内容测量）
)

func (k SizeKind) String() string {
	switch k {
	case SizeContent:
		return "content"
	case SizePercent:
		return "procent"
	case SizeLeft:
		return "left"
	case SizeEndLine:
		return "endLine"
	case SizeString:
		return "string"
	default:
		return ""
	}
}

// ParseSizeKind 支持原始存储中的拼写（procent/endLine）与常见别名。
func ParseSizeKind(s string) (SizeKind, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "content":
		return SizeContent, true
	case "procent", "percent", "%":
		return SizePercent, true
	case "left":
		return SizeLeft, true
	case "endline", "end-line", "eol":
		return SizeEndLine, true
	case "string":
		return SizeString, true
	}
	return SizeContent, false
}

// SizeSpec 是宽度规格；Percent 仅在 Kind == SizePercent 时有意义。
type SizeSpec struct {
	Kind    SizeKind `json:"kind"`
	Percent float64  `json:"percent,omitempty"`
}

// Content 返回按内容测量的规格。
func Content() SizeSpec { return SizeSpec{Kind: SizeContent} }

// Percent 返回页面宽度百分比规格。
func Percent(p float64) SizeSpec { return SizeSpec{Kind: SizePercent, Percent: p} }

// EndLine 返回独占整行的规格。
func EndLine() SizeSpec { return SizeSpec{Kind: SizeEndLine} }

// Strategy 是 string 打印方式下标题与值的排列策略。
// 这是一个封闭集合：新增策略时 layoutString 中的 switch 必须同步更新。
type Strategy int

const (
	StrategyEnum Strategy = iota
	StrategyInterlinear
	StrategyInterlinearInColumn
	StrategyNewlineInterlinear
)

func (s Strategy) String() string {
	switch s {
	case StrategyEnum:
		return "enum"
	case StrategyInterlinear:
		return "interlinearEnum"
	case StrategyInterlinearInColumn:
		return "interlinearInColumnEnum"
	case StrategyNewlineInterlinear:
		return "newlineInterlinearEnum"
	default:
		return "unknown"
	}
}

// ParseStrategy 解析对齐策略标签。
func ParseStrategy(s string) (Strategy, bool) {
	switch strings.TrimSpace(s) {
	case "enum":
		return StrategyEnum, true
	case "interlinearEnum":
		return StrategyInterlinear, true
	case "interlinearInColumnEnum":
		return StrategyInterlinearInColumn, true
	case "newlineInterlinearEnum":
		return StrategyNewlineInterlinear, true
	}
	return StrategyEnum, false
}

// LineKey 是分组键（打印行号）。未设置的键与任何键都不相等。
type LineKey struct {
	N   int  `json:"n"`
	Set bool `json:"set"`
}

// LineAt 构造一个已设置的分组键。
func LineAt(n int) LineKey { return LineKey{N: n, Set: true} }

// Same 判断两个键是否属于同一打印行。
func (k LineKey) Same(other LineKey) bool {
	return k.Set && other.Set && k.N == other.N
}

// TextStyle 是标题或值的字体样式；Size 为 0 时使用文档默认字号（pt）。
type TextStyle struct {
	Bold   bool    `json:"bold,omitempty"`
	Italic bool    `json:"italic,omitempty"`
	Size   float64 `json:"size,omitempty"`
}

// Column 是 table 类字段的一列。
type Column struct {
	Key     string  `json:"key"`
	Name    string  `json:"name"`
	Percent float64 `json:"percent"`
	Ordinal *int    `json:"ordinal,omitempty"`
	Print   bool    `json:"print"`
}

// ValueKey 返回在 Row 中查找值使用的键。
func (c Column) ValueKey() string {
	if c.Key != "" {
		return c.Key
	}
	return c.Name
}

// Row 是 table 类字段的一行数据，按列键索引。
type Row struct {
	Values map[string]string `json:"values"`
}

// Value 返回该行在指定列上的值，缺失时为空串。
func (r Row) Value(c Column) string {
	if r.Values == nil {
		return ""
	}
	return r.Values[c.ValueKey()]
}

// Field 是文档中的一个字段：标题、值以及排版元数据。
type Field struct {
	Kind  Kind      `json:"kind"`
	Print PrintMode `json:"print"`
	Name  string    `json:"name"`

	ShowTitle bool    `json:"showTitle"`
	ShowValue bool    `json:"showValue"`
	Line      LineKey `json:"line"`

	TitleSize SizeSpec `json:"titleSize"`
	ValueSize SizeSpec `json:"valueSize"`
	Strategy  Strategy `json:"strategy"`

	// ColumnsAlign 保存 string 打印前标题的原始宽度规格。
	ColumnsAlign SizeKind `json:"columnsAlign"`

	TitleStyle TextStyle `json:"titleStyle"`
	ValueStyle TextStyle `json:"valueStyle"`

	Subscript     bool   `json:"subscript"`
	SubscriptText string `json:"subscriptText,omitempty"`

	Columns          []Column `json:"columns,omitempty"`
	Rows             []Row    `json:"rows,omitempty"`
	CustomNumeration bool     `json:"customNumeration,omitempty"`

	// RowsPath 是数据模型中表格行数组的路径，由取值器在排版前展开为 Rows。
	RowsPath string `json:"rowsPath,omitempty"`

	Supplement bool `json:"supplement,omitempty"`
	MarginTop  bool `json:"marginTop,omitempty"`

	// Value 是交给 ValueRenderer 解析的原始值表达式。
	Value string `json:"value,omitempty"`
}

// Visible 报告字段是否需要打印。
func (f *Field) Visible() bool { return f.ShowTitle || f.ShowValue }

// applySupplement 将 supplement 字段替换为带固定标题布局的 table 字段。
func (f *Field) applySupplement() {
	if f.Kind != KindSupplement {
		return
	}
	f.Kind = KindTable
	f.Supplement = true
	f.MarginTop = true
	f.TitleSize = SizeSpec{Kind: SizeLeft}
	f.Strategy = StrategyNewlineInterlinear
}
