// Package email renders report emails and sends them through Resend.
package email

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

type Template string

const (
	TemplateDailyReport Template = "daily_report"
)

//go:embed templates/*.html
var templateFS embed.FS

var funcs = template.FuncMap{
	"money": func(v float64) string {
		return "$" + decimal.NewFromFloat(v).StringFixed(2)
	},
}

// Render executes the named template with data.
func Render(name Template, data any) (string, error) {
	tmpl, err := template.New(string(name) + ".html").
		Funcs(funcs).
		ParseFS(templateFS, fmt.Sprintf("templates/%s.html", name))
	if err != nil {
		return "", errors.Wrapf(err, "failed to parse email template %s", name)
	}

	var body bytes.Buffer
	if err := tmpl.Execute(&body, data); err != nil {
		return "", errors.Wrapf(err, "failed to execute email template %s", name)
	}
	return body.String(), nil
}
