package vault

import (
	"net/http"

	"github.com/jmgilman/go/errors"
)

// HTTPStatus maps a service error onto the status code the transport layer
// should answer with. Conflicts map to 400 alongside validation failures; the
// API treats a duplicate name or email as a bad request, not a 409.
func HTTPStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}
	switch errors.GetCode(err) {
	case errors.CodeInvalidInput, errors.CodeAlreadyExists:
		return http.StatusBadRequest
	case errors.CodeNotFound:
		return http.StatusNotFound
	case errors.CodeForbidden:
		return http.StatusForbidden
	case errors.CodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
