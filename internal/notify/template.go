package notify

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/Masterminds/sprig/v3"

	"github.com/jy02140251/deploy-watcher/internal/probe"
)

// DefaultTemplate renders the summary line followed by one line per result.
const DefaultTemplate = `{{ .Message }}
{{- range .Results }}
{{ statusEmoji .Status }} {{ .Service }}: {{ .Status }} ({{ printf "%.0f" .ResponseTime }}ms)
{{- end }}`

// MessageData is the data available to notification message templates.
type MessageData struct {
	Message string
	Results []probe.Result
}

// ParseTemplate parses a message template with Sprig functions plus
// statusEmoji. An empty string selects DefaultTemplate.
func ParseTemplate(tmplStr string) (*template.Template, error) {
	if tmplStr == "" {
		tmplStr = DefaultTemplate
	}

	funcMap := sprig.TxtFuncMap()
	funcMap["statusEmoji"] = statusEmoji

	t, err := template.New("notify").Funcs(funcMap).Parse(tmplStr)
	if err != nil {
		return nil, fmt.Errorf("parsing message template: %w", err)
	}
	return t, nil
}

// Render executes a parsed message template.
func Render(t *template.Template, message string, results []probe.Result) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, MessageData{Message: message, Results: results}); err != nil {
		return "", fmt.Errorf("executing message template: %w", err)
	}
	return buf.String(), nil
}

func statusEmoji(s probe.Status) string {
	switch s {
	case probe.StatusHealthy:
		return "\U0001f7e2" // 🟢
	case probe.StatusDegraded:
		return "\U0001f7e1" // 🟡
	case probe.StatusDown:
		return "\U0001f534" // 🔴
	case probe.StatusUnknown:
		return "\u2753" // ❓
	}
	return "\u2753"
}
