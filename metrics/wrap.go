package metrics

import (
	"math"
	"strings"
	"unicode"
)

// Wrap 按贪心算法把文本折成宽度不超过 limit 的行：优先在空白处断开，
// 单个词超过限制时在词内拆分；显式换行总是保留。width 返回一段文本的宽度，
// 单位与 limit 一致。行首空白被丢弃，行尾空白被裁掉。
func Wrap(content string, limit float64, width func(string) float64) []string {
	if limit <= 0 {
		limit = math.MaxFloat64
	}

	var lines []string
	var builder strings.Builder
	current := 0.0

	emit := func(force bool) {
		if builder.Len() == 0 {
			if force {
				lines = append(lines, "")
			}
			return
		}
		lines = append(lines, strings.TrimRightFunc(builder.String(), unicode.IsSpace))
		builder.Reset()
		current = 0
	}
	appendToken := func(token string, w float64) {
		if builder.Len() == 0 && isBlank(token) {
			return
		}
		builder.WriteString(token)
		current += w
	}

	for _, token := range tokenize(content) {
		if token == "\n" {
			emit(true)
			continue
		}

		tokenWidth := width(token)
		if current > 0 && current+tokenWidth > limit {
			if isBlank(token) {
				emit(false)
				continue
			}
			emit(false)
		}
		if tokenWidth <= limit {
			appendToken(token, tokenWidth)
			continue
		}

		for _, chunk := range splitByWidth(token, limit, width) {
			chunkWidth := width(chunk)
			if current > 0 && current+chunkWidth > limit {
				emit(false)
			}
			appendToken(chunk, chunkWidth)
		}
	}

	emit(true)
	return lines
}

func isBlank(s string) bool { return strings.TrimSpace(s) == "" }

// tokenize 把文本切成交替的空白段与非空白段，显式换行单独成为一个记号。
func tokenize(s string) []string {
	var tokens []string
	var builder strings.Builder
	lastWasSpace := false
	flush := func() {
		if builder.Len() == 0 {
			return
		}
		tokens = append(tokens, builder.String())
		builder.Reset()
	}

	for _, r := range s {
		if r == '\r' {
			continue
		}
		if r == '\n' {
			flush()
			tokens = append(tokens, "\n")
			lastWasSpace = false
			continue
		}
		isSpace := unicode.IsSpace(r)
		if builder.Len() == 0 {
			lastWasSpace = isSpace
		} else if lastWasSpace != isSpace {
			flush()
			lastWasSpace = isSpace
		}
		builder.WriteRune(r)
	}
	flush()
	return tokens
}

func splitByWidth(token string, limit float64, width func(string) float64) []string {
	var parts []string
	var builder strings.Builder
	for _, r := range token {
		builder.WriteRune(r)
		if width(builder.String()) > limit && builder.Len() > len(string(r)) {
			runes := []rune(builder.String())
			parts = append(parts, string(runes[:len(runes)-1]))
			builder.Reset()
			builder.WriteRune(r)
		}
	}
	if builder.Len() > 0 {
		parts = append(parts, builder.String())
	}
	return parts
}
