package stringutil

import (
	"bytes"
	"text/template"

	"github.com/Masterminds/sprig/v3"
)

// Tprintf renders a string from a given template string and field values. The sprig text functions
// (e.g. upper, quote, join) are available to the template.
func Tprintf(tmpl string, data map[string]interface{}) string {
	t := template.Must(template.New("").Funcs(sprig.TxtFuncMap()).Parse(tmpl))
	buf := &bytes.Buffer{}
	if err := t.Execute(buf, data); err != nil {
		return ""
	}
	return buf.String()
}
