package pages

import (
	"net/url"
	"strconv"
)

// Form carries submitted values and per-field errors back into a re-rendered form.
type Form struct {
	Values url.Values
	Errors map[string]string
}

// NewForm copies values so later edits do not touch the request.
func NewForm(values url.Values) Form {
	f := Form{Values: url.Values{}}
	for k, v := range values {
		f.Values[k] = append([]string(nil), v...)
	}
	return f
}

func (f Form) Value(name string) string {
	return f.Values.Get(name)
}

func (f Form) Error(name string) string {
	return f.Errors[name]
}

// Set records a value, creating the map on demand.
func (f *Form) Set(name, value string) {
	if f.Values == nil {
		f.Values = url.Values{}
	}
	f.Values.Set(name, value)
}

// Fail records an error for field.
func (f *Form) Fail(field, message string) {
	if f.Errors == nil {
		f.Errors = map[string]string{}
	}
	f.Errors[field] = message
}

func (f Form) HasErrors() bool {
	return len(f.Errors) > 0
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func urlQueryEscape(s string) string {
	return url.QueryEscape(s)
}
