package templates

import (
	"bytes"
	"embed"
	"fmt"
	htmpl "html/template"
	"io"
	"reflect"
	"strings"
	"sync"
	texttpl "text/template"
	"time"
)

//go:embed *.tmpl
var FS embed.FS

// Template names, one set of <name>.{subject,text,html}.tmpl each.
const (
	VisitorAwaitingApproval = "visitor_awaiting_approval"
	ParcelReceived          = "parcel_received"
)

// Known reports whether name has a template set.
func Known(name string) bool {
	switch name {
	case VisitorAwaitingApproval, ParcelReceived:
		return true
	}
	return false
}

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

func baseFuncs() map[string]any {
	return map[string]any{
		"now":     func() time.Time { return time.Now().UTC() },
		"upper":   strings.ToUpper,
		"default": defaultFn,
	}
}

// set is one parsed template trio.
type set struct {
	subject *texttpl.Template
	text    *texttpl.Template
	html    *htmpl.Template
}

var (
	parseOnce sync.Once
	sets      map[string]*set
	parseErr  error
)

func parseAll() {
	funcs := baseFuncs()
	sets = make(map[string]*set, 2)
	for _, name := range []string{VisitorAwaitingApproval, ParcelReceived} {
		subject, err := texttpl.New(name+".subject.tmpl").Funcs(funcs).Option("missingkey=zero").ParseFS(FS, name+".subject.tmpl")
		if err != nil {
			parseErr = fmt.Errorf("parse %s subject: %w", name, err)
			return
		}
		text, err := texttpl.New(name+".text.tmpl").Funcs(funcs).Option("missingkey=zero").ParseFS(FS, name+".text.tmpl")
		if err != nil {
			parseErr = fmt.Errorf("parse %s text: %w", name, err)
			return
		}
		html, err := htmpl.New(name+".html.tmpl").Funcs(funcs).Option("missingkey=zero").ParseFS(FS, name+".html.tmpl")
		if err != nil {
			parseErr = fmt.Errorf("parse %s html: %w", name, err)
			return
		}
		sets[name] = &set{subject: subject, text: text, html: html}
	}
}

type executor interface {
	Execute(w io.Writer, data any) error
}

func execute(t executor, name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("exec %q: %w", name, err)
	}
	return buf.String(), nil
}

// Render renders the subject, text and html parts of the named template.
func Render(name string, data any) (subject string, text string, html string, err error) {
	if !Known(name) {
		return "", "", "", fmt.Errorf("unknown template %q", name)
	}
	parseOnce.Do(parseAll)
	if parseErr != nil {
		return "", "", "", parseErr
	}
	ts := sets[name]
	if subject, err = execute(ts.subject, name+" subject", data); err != nil {
		return "", "", "", err
	}
	if text, err = execute(ts.text, name+" text", data); err != nil {
		return "", "", "", err
	}
	if html, err = execute(ts.html, name+" html", data); err != nil {
		return "", "", "", err
	}
	return strings.TrimSpace(subject), text, html, nil
}
