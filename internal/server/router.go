// internal/server/router.go
//
// HTTP 路由註冊與中介層。
// 相同的路由同時掛在 /api/v1 與根路徑 /。
package server

import (
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// RequestIDHeader 為請求追蹤標頭；client 未提供時由伺服器產生。
const RequestIDHeader = "X-Request-ID"

// Router 建立並回傳整個 HTTP 處理鏈（含 OpenTelemetry instrumentation）。
func (s *Server) Router() http.Handler {
	r := mux.NewRouter()
	r.Use(requestLog)

	s.routes(r.PathPrefix("/api/v1").Subrouter())
	s.routes(r)

	return otelhttp.NewHandler(r, "comptes")
}

//   - GET    /health
//   - GET    /comptes
//   - POST   /comptes
//   - GET    /comptes/{id}
//   - PUT    /comptes/{id}
//   - DELETE /comptes/{id}
func (s *Server) routes(r *mux.Router) {
	r.HandleFunc("/health", s.health).Methods(http.MethodGet)
	r.HandleFunc("/comptes", s.list).Methods(http.MethodGet)
	r.HandleFunc("/comptes", s.create).Methods(http.MethodPost)
	r.HandleFunc("/comptes/{id:[0-9]+}", s.get).Methods(http.MethodGet)
	r.HandleFunc("/comptes/{id:[0-9]+}", s.update).Methods(http.MethodPut)
	r.HandleFunc("/comptes/{id:[0-9]+}", s.remove).Methods(http.MethodDelete)
}

// statusRecorder 記錄回應狀態碼供日誌使用。
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(code int) {
	rec.status = code
	rec.ResponseWriter.WriteHeader(code)
}

// requestLog 為每個請求補上 X-Request-ID 並記錄方法、路徑、狀態與耗時。
func requestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)

		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		log.Printf("[%s] %s %s %d %s", id, r.Method, r.URL.Path, rec.status, time.Since(start).Round(time.Microsecond))
	})
}
