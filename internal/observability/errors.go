package observability

import (
	"context"
	"errors"
	"net/http"

	"github.com/baxromumarov/recipe-hunter/internal/httpx"
)

const (
	ErrorTransport  = "transport"
	ErrorRateLimit  = "rate_limit"
	ErrorEncoding   = "encoding"
	ErrorDecode     = "decode"
	ErrorNoRecipe   = "no_recipe"
	ErrorStore      = "store"
	ErrorInvalidURL = "invalid_url"
	ErrorUnknown    = "unknown"
)

// ClassifyFetchError maps transport failures to an error type; anything that is
// not a fetch failure is ErrorUnknown.
func ClassifyFetchError(err error) string {
	if err == nil {
		return ErrorUnknown
	}
	var fe *httpx.FetchError
	if errors.As(err, &fe) {
		if fe.Status == http.StatusTooManyRequests {
			return ErrorRateLimit
		}
		return ErrorTransport
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return ErrorTransport
	}
	return ErrorUnknown
}
