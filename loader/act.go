// Package loader 把 .act DSL 文件与签名清单转换为排版引擎使用的字段序列。
package loader

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ByLCY/actprint/dsl"
	"github.com/ByLCY/actprint/layout"
	"github.com/ByLCY/actprint/signature"
)

const actExt = ".act"

// Act 是一份已解析的文书定义：样式设置、按打印顺序排列的字段以及可选的电子签名附录。
type Act struct {
	Name     string
	Version  string
	Settings layout.DocSettings
	Fields   []layout.Field
	Appendix *signature.Appendix
}

// FieldSource 按文书标识返回已解析全部排版属性的字段序列。
type FieldSource interface {
	Load(ctx context.Context, id string) (*Act, error)
}

// DSLSource 从 Root 目录读取 <id>.act 文件。
type DSLSource struct {
	Root string
}

// Load 实现 FieldSource。id 可以带扩展名，也可以是绝对路径。
func (s DSLSource) Load(ctx context.Context, id string) (*Act, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("文书标识为空")
	}
	path := id
	if filepath.Ext(path) == "" {
		path += actExt
	}
	if s.Root != "" && !filepath.IsAbs(path) {
		path = filepath.Join(s.Root, path)
	}
	return LoadFile(path)
}

// LoadFile 读取并解析单个 DSL 文件。
func LoadFile(path string) (*Act, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("打开 %s 失败: %w", path, err)
	}
	defer f.Close()

	doc, err := dsl.ParseNamed(path, f)
	if err != nil {
		return nil, fmt.Errorf("解析 %s 失败: %w", path, err)
	}
	return FromDocument(doc)
}

// FromDocument 将 DSL 语法树转换为 Act。每种段最多出现一次。
func FromDocument(doc *dsl.Document) (*Act, error) {
	if doc == nil {
		return nil, fmt.Errorf("文书为空")
	}
	act := &Act{Name: doc.Name, Version: doc.Version, Settings: layout.DefaultSettings()}
	seen := make(map[string]bool, len(doc.Sections))
	for _, sec := range doc.Sections {
		kind := sec.Kind()
		if seen[kind] {
			return nil, fmt.Errorf("%s 段重复", kind)
		}
		seen[kind] = true

		switch {
		case sec.Settings != nil:
			if err := applySettings(&act.Settings, sec.Settings.Block); err != nil {
				return nil, err
			}
		case sec.Fields != nil:
			fields, err := parseFields(sec.Fields.Block)
			if err != nil {
				return nil, err
			}
			act.Fields = fields
		case sec.Signatures != nil:
			appendix, err := parseSignatures(sec.Signatures)
			if err != nil {
				return nil, err
			}
			act.Appendix = appendix
		}
	}
	return act, nil
}

func applySettings(s *layout.DocSettings, b *dsl.Block) error {
	for _, stmt := range b.Statements {
		a := stmt.Assignment
		if a == nil {
			return fmt.Errorf("settings 段只允许 key: value 形式的赋值")
		}
		v := strings.TrimSpace(a.Value.Text())
		switch a.Key {
		case "name":
			s.Name = v
		case "left", "right", "top", "bottom":
			l, err := layout.ParseLength(v)
			if err != nil {
				return fmt.Errorf("%s: %w", a.Pos, &layout.ConfigurationError{Setting: a.Key, Value: v, Err: err})
			}
			switch a.Key {
			case "left":
				s.LeftIndent = l
			case "right":
				s.RightIndent = l
			case "top":
				s.TopIndent = l
			default:
				s.BottomIndent = l
			}
		case "spacing":
			s.LineSpacing = v
		case "font":
			s.FontFamily = v
		case "size":
			size, err := strconv.ParseFloat(strings.TrimSuffix(v, "pt"), 64)
			if err != nil {
				return fmt.Errorf("%s: %w", a.Pos, &layout.ConfigurationError{Setting: "size", Value: v, Err: err})
			}
			s.FontSize = size
		case "orientation":
			s.Orientation = v
		case "border":
			s.Border = v
		case "placeholder":
			s.Placeholder = &v
		case "padding":
			l, err := layout.ParseLength(v)
			if err != nil {
				return fmt.Errorf("%s: %w", a.Pos, &layout.ConfigurationError{Setting: "padding", Value: v, Err: err})
			}
			// 不带单位的内边距按 twip 解释。
			padding := l.Value
			if l.Unit != layout.UnitNone {
				padding = l.Twips()
			}
			s.CellPadding = &padding
		default:
			return fmt.Errorf("%s: 未知的设置项 %q", a.Pos, a.Key)
		}
	}
	return nil
}

func parseSignatures(sec *dsl.SignaturesSection) (*signature.Appendix, error) {
	name := ""
	if len(sec.Layout) > 0 {
		name = sec.Layout[0].Value
	}
	l, err := signature.ParseLayout(name)
	if err != nil {
		return nil, err
	}
	appendix := signature.New(l, nil)
	for _, stmt := range sec.Block.Statements {
		cmd := stmt.Command
		if cmd == nil || cmd.Name != "signer" {
			return nil, fmt.Errorf("signatures 段只允许 signer 声明")
		}
		var e signature.Entry
		if len(cmd.Args) > 0 {
			e.Employee = cmd.Args[0].Value
		}
		if cmd.Block != nil {
			for _, s := range cmd.Block.Statements {
				if s.Assignment == nil {
					return nil, fmt.Errorf("%s: signer 块只允许赋值", cmd.Pos)
				}
				if err := setEntry(&e, s.Assignment.Key, s.Assignment.Value.Text()); err != nil {
					return nil, fmt.Errorf("%s: %w", s.Assignment.Pos, err)
				}
			}
		}
		appendix.Entries = append(appendix.Entries, e)
	}
	return appendix, nil
}

func setEntry(e *signature.Entry, key, value string) error {
	switch key {
	case "organization":
		e.Organization = value
	case "employee":
		e.Employee = value
	case "position":
		e.Position = value
	case "certificate":
		e.Certificate = value
	case "valid-from":
		e.ValidFrom = value
	case "valid-to":
		e.ValidTo = value
	case "signed-at":
		e.SignedAt = value
	default:
		return fmt.Errorf("未知的签名属性 %q", key)
	}
	return nil
}
