package synth

import (
	"text/template"

	"github.com/a-peyrard/godeco/render"
)

var fileTemplate = template.Must(template.New("proxy").Parse(`
{{- with .Header }}{{ . }}

{{ end -}}
package {{ .Package }}
{{ if .Imports }}
import (
{{- range .Imports }}
	{{ .Alias }} {{ printf "%q" .Path }}
{{- end }}
)
{{ end }}
{{- if .Register }}
func init() {
	{{ .Register }}.Register({{ printf "%q" .Qualified }}, {{ .Constructor }})
}
{{ end }}
// {{ .Name }} is {{ .Decorator }} forwarding to {{ .Field }} the methods of
// {{ .Subject }} it does not implement.
type {{ .Name }} struct {
	{{ .Embedded }}
	{{ .Field }} {{ .FieldType }}
}
{{ if .Contracts }}
var (
{{- range .Contracts }}
	_ {{ . }} = (*{{ $.Name }})(nil)
{{- end }}
)
{{ end }}
func {{ .Constructor }}({{ .Params }}) {{ if .Fallible }}(*{{ .Name }}, error){{ else }}*{{ .Name }}{{ end }} {
{{- if .Fallible }}
	{{ .DecoratorVar }}, {{ .ErrVar }} := {{ .DecoratorConstructor }}({{ .Args }})
	if {{ .ErrVar }} != nil {
		return nil, {{ .ErrVar }}
	}
	return &{{ .Name }}{
		{{ .EmbeddedField }}: {{ .DecoratorVar }},
		{{ .Field }}: {{ .FieldValue }},
	}, nil
{{- else }}
	return &{{ .Name }}{
		{{ .EmbeddedField }}: {{ .DecoratorConstructor }}({{ .Args }}),
		{{ .Field }}: {{ .FieldValue }},
	}
{{- end }}
}
{{ range .Methods }}
func ({{ $.Receiver }} *{{ $.Name }}) {{ .Name }}({{ .Params }}){{ with .Results }} {{ . }}{{ end }} {
	{{ if .Results }}return {{ end }}{{ .Call }}
}
{{ end -}}
`))

type (
	fileData struct {
		Header    string
		Package   string
		Imports   []render.ImportSpec
		Register  string
		Qualified string

		Name      string
		Decorator string
		Subject   string
		Embedded  string
		Field     string
		FieldType string
		Contracts []string

		Constructor          string
		Params               string
		Args                 string
		Fallible             bool
		DecoratorVar         string
		ErrVar               string
		DecoratorConstructor string
		EmbeddedField        string
		FieldValue           string

		Receiver string
		Methods  []methodData
	}

	methodData struct {
		Name    string
		Params  string
		Results string
		Call    string
	}
)
