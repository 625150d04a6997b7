package renderer

import "github.com/ByLCY/actprint/layout"

// Renderer 将排版树序列化为最终文件，例如 PDF 预览。
// Render 返回生成的二进制数据以及可能的错误；调用方不得传入构建失败的半成品树。
type Renderer interface {
	Render(doc *layout.Document) ([]byte, error)
}
