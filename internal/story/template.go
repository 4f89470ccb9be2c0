package story

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"
)

// templateFuncs provides utility functions for narration templates.
var templateFuncs = sprig.TxtFuncMap()

// templateData is what narration templates see: {{ .Vars.trust }}, {{ .Flags.clarity }}.
type templateData struct {
	Vars  map[string]float64
	Flags map[string]bool
}

func parseTemplate(tmplStr string) (*template.Template, error) {
	if !strings.Contains(tmplStr, "{{") {
		return nil, nil
	}

	tmpl, err := template.New("").Funcs(templateFuncs).Option("missingkey=zero").Parse(tmplStr)
	if err != nil {
		return nil, fmt.Errorf("parsing template: %w", err)
	}
	return tmpl, nil
}

// expandTemplate expands tmplStr against data. Strings without template
// markers are returned as-is.
func expandTemplate(tmplStr string, data templateData) (string, error) {
	tmpl, err := parseTemplate(tmplStr)
	if err != nil {
		return "", err
	}
	if tmpl == nil {
		return tmplStr, nil
	}

	var buf bytes.Buffer
	err = tmpl.Execute(&buf, data)
	if err != nil {
		return "", fmt.Errorf("executing template: %w", err)
	}

	return buf.String(), nil
}
