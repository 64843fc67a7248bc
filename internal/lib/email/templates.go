package email

import (
	"embed"
	"fmt"
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"
)

// Template names an email layout under templates/.
type Template string

const (
	TemplateWelcome Template = "welcome"
)

//go:embed templates/*
var templateFS embed.FS

var (
	htmlTemplates = htmltemplate.Must(htmltemplate.ParseFS(templateFS, "templates/*.html"))
	textTemplates = texttemplate.Must(texttemplate.ParseFS(templateFS, "templates/*.txt"))
)

// render executes both the HTML and plain-text variant of name.
func render(name Template, data map[string]string) (html, text string, err error) {
	var h, t strings.Builder
	if err := htmlTemplates.ExecuteTemplate(&h, string(name)+".html", data); err != nil {
		return "", "", fmt.Errorf("rendering %s.html: %w", name, err)
	}
	if err := textTemplates.ExecuteTemplate(&t, string(name)+".txt", data); err != nil {
		return "", "", fmt.Errorf("rendering %s.txt: %w", name, err)
	}
	return h.String(), t.String(), nil
}
