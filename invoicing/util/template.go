package util

import (
	"bytes"
	"encoding/base64"
	"html"
	"text/template"
)

// MergeTemplate executes tpl against model. Besides the builtins the
// template can call base64 and escape (HTML escaping).
func MergeTemplate(tpl *string, model any) ([]byte, error) {

	var funcMap = template.FuncMap{
		"base64": base64.StdEncoding.EncodeToString,
		"escape": html.EscapeString,
	}

	tmpl, err := template.New("page").Funcs(funcMap).Parse(*tpl)
	if err != nil {
		return nil, err
	}

	var output bytes.Buffer

	err = tmpl.Execute(&output, model)
	if err != nil {
		return nil, err
	}
	return output.Bytes(), nil
}
