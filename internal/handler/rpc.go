package handler

import (
	"encoding/json"
	"errors"
	"log"
	"strings"

	"github.com/gin-gonic/gin"

	"cryptic-server/internal/errs"
	"cryptic-server/internal/model"
)

// MSFunc handles one microservice endpoint for an authenticated user. The
// raw data payload is decoded by the handler itself.
type MSFunc func(user *model.User, data []byte) (gin.H, error)

// Router maps (ms, endpoint) pairs to handlers.
type Router struct {
	routes map[string]MSFunc
}

func NewRouter() *Router {
	return &Router{routes: make(map[string]MSFunc)}
}

func routeKey(ms string, endpoint []string) string {
	return ms + " " + strings.Join(endpoint, "/")
}

func (r *Router) Handle(ms string, endpoint []string, fn MSFunc) {
	r.routes[routeKey(ms, endpoint)] = fn
}

// Dispatch runs the endpoint and folds any failure into the wire error
// shape. Unknown routes report "missing action", matching what clients
// expect from the service registry.
func (r *Router) Dispatch(user *model.User, ms string, endpoint []string, data []byte) gin.H {
	fn, ok := r.routes[routeKey(ms, endpoint)]
	if !ok {
		return gin.H{"error": "missing action"}
	}

	result, err := fn(user, data)
	if err != nil {
		var domain *errs.Error
		if errors.As(err, &domain) {
			if len(domain.Params) > 0 {
				return gin.H{"error": domain.Tag, "params": domain.Params}
			}
			return gin.H{"error": domain.Tag}
		}
		log.Printf("ms %s %v: %v", ms, endpoint, err)
		return gin.H{"error": "internal_error"}
	}
	return result
}

func internalError(err error) gin.H {
	log.Printf("internal error: %v", err)
	return gin.H{"error": "internal_error"}
}

// bind decodes an endpoint payload. Malformed payloads surface as
// invalid_request before any handler logic runs.
func bind(data []byte, v any) error {
	if len(data) == 0 {
		return errs.InvalidRequest
	}
	if err := json.Unmarshal(data, v); err != nil {
		return errs.InvalidRequest
	}
	return nil
}
