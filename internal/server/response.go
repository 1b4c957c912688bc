// internal/server/response.go
//
// 統一 HTTP 回應格式：成功回應依 Accept 標頭選擇 JSON 或 XML，錯誤回應為純文字。
package server

import (
	"log"
	"net/http"

	"restclient/internal/codec"
	"restclient/internal/compte"
)

// writeAccount 輸出單一帳戶。
func writeAccount(w http.ResponseWriter, r *http.Request, code int, a compte.Account) {
	c := codec.Negotiate(r.Header.Get("Accept"))
	w.Header().Set("Content-Type", c.ContentType())
	w.WriteHeader(code)
	if err := c.Encode(w, a); err != nil {
		log.Printf("encode %s response: %v", c.Format(), err)
	}
}

// writeList 輸出帳戶清單。
func writeList(w http.ResponseWriter, r *http.Request, code int, accounts []compte.Account) {
	c := codec.Negotiate(r.Header.Get("Accept"))
	w.Header().Set("Content-Type", c.ContentType())
	w.WriteHeader(code)
	if err := c.EncodeList(w, accounts); err != nil {
		log.Printf("encode %s response: %v", c.Format(), err)
	}
}

// writeErr 統一輸出錯誤回應。
func writeErr(w http.ResponseWriter, err error, code int) {
	http.Error(w, err.Error(), code)
}
