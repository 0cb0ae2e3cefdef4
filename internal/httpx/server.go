package httpx

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type healthData struct {
	Service string `json:"service"`
	Status  string `json:"status"`
}

// NewRouter builds the shared middleware stack. The health endpoint
// answers in the same envelope as every other route, with the service
// name so probes can tell the cart API apart from its siblings.
func NewRouter(serviceName string) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger)
	r.Use(middleware.Timeout(15 * time.Second))
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		ok(w, healthData{Service: serviceName, Status: "up"})
	})
	return r
}
