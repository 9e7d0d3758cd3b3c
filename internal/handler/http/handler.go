package http

import (
	"net/http"
	"strconv"

	"github.com/presensi-app/attendance-backend-go/internal/domain/user"
	"github.com/presensi-app/attendance-backend-go/internal/handler/http/middleware"
	"github.com/presensi-app/attendance-backend-go/internal/handler/http/response"
)

// authorize runs the capability check every handler starts with. On denial
// the response is written and ok is false.
func authorize(w http.ResponseWriter, r *http.Request, permission user.Permission) (actor *user.Actor, ok bool) {
	actor = middleware.ActorFromContext(r.Context())
	if err := user.Authorize(actor, permission); err != nil {
		response.HandleError(w, err)
		return nil, false
	}
	return actor, true
}

func queryString(r *http.Request, key string) *string {
	if v := r.URL.Query().Get(key); v != "" {
		return &v
	}
	return nil
}

// queryInt returns 0 for absent or malformed values so DTO defaults apply.
func queryInt(r *http.Request, key string) int {
	v, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil {
		return 0
	}
	return v
}
