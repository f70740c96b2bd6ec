package application

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

// NewRouter wires the handlers behind CORS. Browsers call the two public
// entrypoints directly, so every origin is allowed.
func NewRouter(h *Handlers) http.Handler {
	router := mux.NewRouter()

	router.HandleFunc("/process-lottery-round", h.ProcessLotteryRound).Methods(http.MethodGet, http.MethodPost)
	router.HandleFunc("/verify-payments", h.VerifyPayment).Methods(http.MethodPost)
	router.HandleFunc("/rounds/current", h.CurrentRound).Methods(http.MethodGet)
	router.HandleFunc("/rounds/{id:[0-9]+}/payments", h.RoundPayments).Methods(http.MethodGet)
	router.HandleFunc("/healthz", h.Health).Methods(http.MethodGet)

	// OPTIONS without Access-Control-Request-Method is not a preflight for
	// rs/cors and reaches the router
	router.Methods(http.MethodOptions).HandlerFunc(Preflight)

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodOptions,
		},
		AllowedHeaders:       []string{"authorization", "x-client-info", "apikey", "content-type"},
		OptionsSuccessStatus: http.StatusOK,
	})

	return c.Handler(router)
}

// NewServer creates the HTTP server for the router
func NewServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:    addr,
		Handler: handler,
		// Payment verification polls the chain for up to ConfirmAttempts*ConfirmInterval
		WriteTimeout:      2 * time.Minute,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
