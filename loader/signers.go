package loader

import (
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/ByLCY/actprint/layout"
	"github.com/ByLCY/actprint/signature"
)

const (
	defaultSignSubscript  = "(подпись)"
	signatureValuePercent = 30
)

// Signatory 是需要手写签名的人员，合并后成为一个 signature 字段。
type Signatory struct {
	Title     string `yaml:"title"`
	Name      string `yaml:"name"`
	Subscript string `yaml:"subscript,omitempty"`
	// After 为打印行号：签名插入到该行最后一个字段之后；为空时追加到末尾。
	After *int `yaml:"after,omitempty"`
}

// Field 把签名人员转换为 signature 字段。字段不带行号，签名从不参与分组。
func (s Signatory) Field() layout.Field {
	sub := s.Subscript
	if sub == "" {
		sub = defaultSignSubscript
	}
	return layout.Field{
		Kind:          layout.KindSignature,
		Name:          s.Title,
		Value:         s.Name,
		ShowTitle:     s.Title != "",
		ShowValue:     true,
		ValueSize:     layout.Percent(signatureValuePercent),
		Subscript:     true,
		SubscriptText: sub,
	}
}

// SignatureList 是签名清单文件：手写签名人员与电子签名附录。
//
//	layout: kcp
//	signatories:
//	  - title: Инспектор
//	    name: Иванов И.И.
//	    after: 3
//	entries:
//	  - organization: ГУ МЧС
//	    employee: Петров П.П.
//	    signed_at: 12.03.2024 11:00
type SignatureList struct {
	Layout      string            `yaml:"layout"`
	Signatories []Signatory       `yaml:"signatories"`
	Entries     []signature.Entry `yaml:"entries"`
}

// LoadSignatureList 读取 YAML 签名清单；未知键视为错误。
func LoadSignatureList(path string) (*SignatureList, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("打开签名清单 %s 失败: %w", path, err)
	}
	defer f.Close()

	var list SignatureList
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&list); err != nil {
		return nil, fmt.Errorf("解析签名清单 %s 失败: %w", path, err)
	}
	return &list, nil
}

// Appendix 返回清单中的电子签名附录；没有条目时返回 nil。
func (l *SignatureList) Appendix() (*signature.Appendix, error) {
	if l == nil || len(l.Entries) == 0 {
		return nil, nil
	}
	kind, err := signature.ParseLayout(l.Layout)
	if err != nil {
		return nil, err
	}
	return signature.New(kind, l.Entries), nil
}

// MergeSignatures 返回新的字段序列：带 After 的签名插入到该打印行最后一个字段之后，
// 找不到该行或未指定时按清单顺序追加到末尾。输入序列不被修改。
func MergeSignatures(fields []layout.Field, signatories []Signatory) []layout.Field {
	out := slices.Clone(fields)
	var tail []layout.Field
	for _, s := range signatories {
		f := s.Field()
		if s.After == nil {
			tail = append(tail, f)
			continue
		}
		key := layout.LineAt(*s.After)
		at := -1
		for i := range out {
			if out[i].Line.Same(key) {
				at = i
			}
		}
		if at < 0 {
			tail = append(tail, f)
			continue
		}
		// 同一行后已插入的签名保持清单顺序。
		at++
		for at < len(out) && out[at].Kind == layout.KindSignature && !out[at].Line.Set {
			at++
		}
		out = slices.Insert(out, at, f)
	}
	return append(out, tail...)
}
