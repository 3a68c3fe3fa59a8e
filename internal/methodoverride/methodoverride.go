// Package methodoverride lets HTML forms express PUT and DELETE requests.
// Browsers only submit GET and POST, so the edit and delete forms carry
// the real verb in a hidden _method field, which this middleware promotes
// to the request method before routing.
package methodoverride

import (
	"net/http"
	"strings"
)

// FieldName is the form field carrying the overriding method.
const FieldName = "_method"

// Middleware rewrites POST requests whose form body carries
// _method=PUT or _method=DELETE.
func Middleware(h http.Handler) http.Handler {
	middleware := func(response http.ResponseWriter, request *http.Request) {
		if request.Method == http.MethodPost &&
			strings.HasPrefix(request.Header.Get("Content-Type"), "application/x-www-form-urlencoded") {
			if err := request.ParseForm(); err == nil {
				switch strings.ToUpper(request.PostForm.Get(FieldName)) {
				case http.MethodPut:
					request.Method = http.MethodPut
				case http.MethodDelete:
					request.Method = http.MethodDelete
				}
			}
		}

		h.ServeHTTP(response, request)
	}

	return http.HandlerFunc(middleware)
}
