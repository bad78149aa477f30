package templates

import (
	"bytes"
	"embed"
	"fmt"
	htmpl "html/template"
	"reflect"
	"strings"
	texttpl "text/template"
	"time"
)

//go:embed *.tmpl
var FS embed.FS

// Template names. Each expects <name>.subject.tmpl, <name>.text.tmpl and <name>.html.tmpl.
const (
	InquiryReceived = "inquiry_received"
	PasswordReset   = "password_reset"
)

// defaultFn supports pipe usage: {{ .Value | default "Fallback" }}
func defaultFn(fallback any, value any) any {
	switch x := value.(type) {
	case string:
		if strings.TrimSpace(x) == "" {
			return fallback
		}
		return x
	case nil:
		return fallback
	default:
		rv := reflect.ValueOf(value)
		if !rv.IsValid() || rv.IsZero() {
			return fallback
		}
		return value
	}
}

func funcs() map[string]any {
	return map[string]any{
		"now":        func() time.Time { return time.Now().UTC() },
		"formatTime": func(t time.Time, layout string) string { return t.Format(layout) },
		"upper":      strings.ToUpper,
		"default":    defaultFn,
	}
}

// Both sets are parsed once from the embedded files; a broken template
// fails at startup rather than on first send.
var (
	textSet = texttpl.Must(texttpl.New("").Funcs(funcs()).ParseFS(FS, "*.subject.tmpl", "*.text.tmpl"))
	htmlSet = htmpl.Must(htmpl.New("").Funcs(funcs()).ParseFS(FS, "*.html.tmpl"))
)

func execute(name string, isHTML bool, data any) (string, error) {
	var buf bytes.Buffer
	var err error
	if isHTML {
		err = htmlSet.ExecuteTemplate(&buf, name, data)
	} else {
		err = textSet.ExecuteTemplate(&buf, name, data)
	}
	if err != nil {
		return "", fmt.Errorf("render %q: %w", name, err)
	}
	return buf.String(), nil
}

// Render renders subject, text, and html for the given template name.
// The subject is collapsed to a single line.
func Render(name string, data any) (subject string, text string, html string, err error) {
	if subject, err = execute(name+".subject.tmpl", false, data); err != nil {
		return "", "", "", err
	}
	subject = strings.Join(strings.Fields(subject), " ")
	if text, err = execute(name+".text.tmpl", false, data); err != nil {
		return "", "", "", err
	}
	if html, err = execute(name+".html.tmpl", true, data); err != nil {
		return "", "", "", err
	}
	return subject, text, html, nil
}
