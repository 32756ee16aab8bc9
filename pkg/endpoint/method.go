package endpoint

import "strings"

// Method is an HTTP verb recognized as an operation key under a path.
type Method string

// Recognized operation verbs. Any other key under a path item (parameters,
// servers, summary, x-*) is not an operation.
const (
	MethodGet     Method = "GET"
	MethodPost    Method = "POST"
	MethodPut     Method = "PUT"
	MethodPatch   Method = "PATCH"
	MethodDelete  Method = "DELETE"
	MethodOptions Method = "OPTIONS"
	MethodHead    Method = "HEAD"
)

// Methods lists the operation verbs in the order they are scanned.
var Methods = []Method{
	MethodGet,
	MethodPost,
	MethodPut,
	MethodPatch,
	MethodDelete,
	MethodOptions,
	MethodHead,
}

// ParseMethod resolves a verb case-insensitively. Surrounding whitespace is
// not stripped.
func ParseMethod(s string) (Method, bool) {
	m := Method(strings.ToUpper(s))
	for _, known := range Methods {
		if m == known {
			return m, true
		}
	}
	return "", false
}

// Key is the lowercase form used as the key under a path item.
func (m Method) Key() string {
	return strings.ToLower(string(m))
}

func (m Method) String() string {
	return string(m)
}
