package query

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Reserved parameter names. They drive sort/projection/pagination/search and never
// become filter fields.
const (
	ParamPage   = "page"
	ParamSort   = "sort"
	ParamLimit  = "limit"
	ParamFields = "fields"
	ParamSearch = "q"
)

var reserved = map[string]struct{}{
	ParamPage:   {},
	ParamSort:   {},
	ParamLimit:  {},
	ParamFields: {},
	ParamSearch: {},
}

// IsReserved reports whether key is one of the five control parameters.
func IsReserved(key string) bool {
	_, ok := reserved[key]
	return ok
}

// ErrQueryParamInvalid marks a parameter that was dropped or defaulted.
var ErrQueryParamInvalid = errors.New("query parameter invalid")

// ParamIssue records why one parameter did not make it into the query as given.
type ParamIssue struct {
	Key    string
	Value  string
	Reason string
}

func (p ParamIssue) Error() string {
	return fmt.Sprintf("%v: %s=%q: %s", ErrQueryParamInvalid, p.Key, p.Value, p.Reason)
}

func (p ParamIssue) Unwrap() error { return ErrQueryParamInvalid }

// Params is the flat string map a request's query string decodes to.
type Params map[string]string

// FromValues keeps the first value of every key.
func FromValues(values url.Values) Params {
	p := make(Params, len(values))
	for k, v := range values {
		if len(v) > 0 {
			p[k] = v[0]
		}
	}
	return p
}

// validField rejects names that could smuggle operators or address nothing.
func validField(name string) bool {
	if name == "" || len(name) > 64 {
		return false
	}
	if strings.ContainsAny(name, "$\x00") {
		return false
	}
	return !strings.HasPrefix(name, ".") && !strings.HasSuffix(name, ".")
}
