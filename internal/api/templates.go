package api

import (
	"embed"
	"html/template"
	"strings"
)

//go:embed templates/*.html
var templateFS embed.FS

var templateFuncs = template.FuncMap{
	"inc":      func(i int) int { return i + 1 },
	"markdown": renderMarkdown,
	"tabs":     func() []string { return []string{tabLog, tabPlan, tabInsights} },
	"title":    func(s string) string { return strings.ToUpper(s[:1]) + s[1:] },
}

// LoadTemplates parses the embedded page templates.
func LoadTemplates() (*template.Template, error) {
	return template.New("").Funcs(templateFuncs).ParseFS(templateFS, "templates/*.html")
}
