package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/okian/puddin/internal/domain/types"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest    = errors.New("bad request")
	ErrInternal      = errors.New("internal error")
	ErrRefreshFailed = errors.New("datasets could not be refreshed")
)

// codeInternal labels failures that carry no domain kind.
const codeInternal = "internal_error"

// WrapKind attaches an operation and a sentinel kind to err.
func WrapKind(op string, kind, err error) error {
	return fmt.Errorf("%s: %w: %w", op, kind, err)
}

// statusFor maps a domain kind to its HTTP status and error code.
func statusFor(kind types.Kind) (int, string) {
	switch kind {
	case types.KindInvalidInput, types.KindUnsupportedSport:
		return http.StatusBadRequest, string(kind)
	case types.KindTeamNotFound:
		return http.StatusNotFound, string(kind)
	case types.KindAmbiguousTeam:
		return http.StatusConflict, string(kind)
	case types.KindDatasetUnavailable:
		return http.StatusServiceUnavailable, string(kind)
	default:
		return http.StatusInternalServerError, codeInternal
	}
}

// writeDomainError writes err with the status implied by its kind.
// Unclassified errors never leak their text to clients.
func writeDomainError(w http.ResponseWriter, err error) (int, string) {
	status, code := statusFor(types.KindOf(err))
	if code == codeInternal {
		writeError(w, status, code, ErrInternal)
		return status, code
	}
	writeError(w, status, code, errors.New(publicMessage(err)))
	return status, code
}

// publicMessage drops operation prefixes and keeps the innermost cause of
// a classified error.
func publicMessage(err error) string {
	var te *types.Error
	if !errors.As(err, &te) {
		return err.Error()
	}
	for {
		var inner *types.Error
		if te.Err == nil || !errors.As(te.Err, &inner) {
			break
		}
		te = inner
	}
	if te.Err == nil {
		return strings.ReplaceAll(string(te.Kind), "_", " ")
	}
	return te.Err.Error()
}
