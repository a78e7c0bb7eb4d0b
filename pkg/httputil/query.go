package httputil

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	apperrors "github.com/rizzani/grovi-sub000/pkg/errors"
)

// QueryInt parses an optional integer query parameter. It returns nil when
// the parameter is absent or blank.
func QueryInt(r *http.Request, name string) (*int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, apperrors.InvalidInput(fmt.Sprintf("%s must be an integer", name))
	}
	return &v, nil
}

// QueryInt64 parses an optional int64 query parameter.
func QueryInt64(r *http.Request, name string) (*int64, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, apperrors.InvalidInput(fmt.Sprintf("%s must be an integer", name))
	}
	return &v, nil
}

// QueryBool parses an optional boolean query parameter; absent is false.
func QueryBool(r *http.Request, name string) (bool, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, apperrors.InvalidInput(fmt.Sprintf("%s must be a boolean", name))
	}
	return v, nil
}

// QueryList collects a repeatable, comma-separated query parameter:
// ?c=a,b&c=d yields [a b d]. Blank items are dropped.
func QueryList(r *http.Request, name string) []string {
	var out []string
	for _, v := range r.URL.Query()[name] {
		for _, item := range strings.Split(v, ",") {
			if item = strings.TrimSpace(item); item != "" {
				out = append(out, item)
			}
		}
	}
	return out
}
