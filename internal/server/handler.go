// internal/server/handler.go
//
// Package server 提供 /comptes 的 HTTP RESTful 介面，作為 bank.Store 的傳輸層。
// 每個 handler 僅負責：
//  1. 依 Content-Type 解碼請求主體（JSON 或 XML）
//  2. 呼叫 Store
//  3. 依 Accept 編碼回應
//  4. 成功變更狀態後、回應前呼叫 s.persist()
package server

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"restclient/internal/bank"
	"restclient/internal/codec"
	"restclient/internal/compte"
)

// Server 為 HTTP 層核心結構：
// - Store：帳戶儲存（in-memory 或資料庫後端）。
// - persist：持久化鉤子，可為 nil。
type Server struct {
	Store   bank.Store
	persist func() error
}

// NewServer 建立新的 HTTP 伺服器。
// persist 可為 nil；若提供則會於每次成功變更後觸發。
func NewServer(st bank.Store, persist func() error) *Server {
	return &Server{Store: st, persist: persist}
}

// list 處理 GET /comptes。
func (s *Server) list(w http.ResponseWriter, r *http.Request) {
	accounts, err := s.Store.List(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeList(w, r, http.StatusOK, accounts)
}

// get 處理 GET /comptes/{id}。
func (s *Server) get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	a, err := s.Store.Get(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeAccount(w, r, http.StatusOK, a)
}

// create 處理 POST /comptes → 201 Created。
func (s *Server) create(w http.ResponseWriter, r *http.Request) {
	in, err := readAccount(r)
	if err != nil {
		writeErr(w, err, http.StatusBadRequest)
		return
	}
	a, err := s.Store.Create(r.Context(), in)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.afterMutation()
	writeAccount(w, r, http.StatusCreated, a)
}

// update 處理 PUT /comptes/{id}。
func (s *Server) update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	in, err := readAccount(r)
	if err != nil {
		writeErr(w, err, http.StatusBadRequest)
		return
	}
	a, err := s.Store.Update(r.Context(), id, in)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.afterMutation()
	writeAccount(w, r, http.StatusOK, a)
}

// remove 處理 DELETE /comptes/{id} → 204 No Content。
func (s *Server) remove(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := s.Store.Delete(r.Context(), id); err != nil {
		s.fail(w, r, err)
		return
	}
	s.afterMutation()
	w.WriteHeader(http.StatusNoContent)
}

// health 提供健康檢查端點：GET /health。
func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}` + "\n"))
}

// fail 將領域錯誤映射為 HTTP 狀態碼。
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, compte.ErrNotFound):
		writeErr(w, err, http.StatusNotFound)
	case errors.Is(err, compte.ErrInvalid):
		writeErr(w, err, http.StatusBadRequest)
	default:
		log.Printf("%s %s: store error: %v", r.Method, r.URL.Path, err)
		writeErr(w, errors.New("internal error"), http.StatusInternalServerError)
	}
}

func (s *Server) afterMutation() {
	if s.persist == nil {
		return
	}
	if err := s.persist(); err != nil {
		log.Printf("persist failed: %v", err)
	}
}

// pathID 解析 {id}；路由已限制為數字，溢位時回 400。
func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeErr(w, err, http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func readAccount(r *http.Request) (compte.Account, error) {
	return codec.Negotiate(r.Header.Get("Content-Type")).Decode(r.Body)
}
