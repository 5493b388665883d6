package http

import (
	"net/http"
	"strconv"

	apperrors "deskbook/pkg/errors"

	"github.com/julienschmidt/httprouter"
)

// PathID reads a positive integer route parameter.
func PathID(ps httprouter.Params, name string) (int64, error) {
	raw := ps.ByName(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.InvalidInput("invalid " + name + " parameter: " + raw)
	}
	return id, nil
}

// QueryInt reads an optional integer query parameter. ok is false when the
// parameter is absent.
func QueryInt(r *http.Request, name string) (value int, ok bool, err error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, false, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false, apperrors.InvalidInput("invalid " + name + " parameter: " + raw)
	}
	return v, true, nil
}
