package constants

import "strings"

// Method identifies one extraction strategy.
type Method string

const (
	MethodLayout   Method = "pdftotext-layout"
	MethodEmbedded Method = "pdf-content"
	MethodOCR      Method = "tesseract-ocr"
)

// AllMethods lists every strategy in declaration order. The strategy runner
// always executes enabled strategies in this order.
var AllMethods = []Method{MethodLayout, MethodEmbedded, MethodOCR}

// ParseMethod maps a user-supplied name (or short alias) to a Method.
func ParseMethod(s string) (Method, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case string(MethodLayout), "layout", "pdftotext":
		return MethodLayout, true
	case string(MethodEmbedded), "embedded", "content", "text":
		return MethodEmbedded, true
	case string(MethodOCR), "ocr", "tesseract":
		return MethodOCR, true
	}
	return "", false
}
