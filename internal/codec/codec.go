// internal/codec/codec.go
//
// Package codec 提供 /comptes 資源的兩種主體格式：JSON 與 XML。
// 兩者皆委派給標準序列化器，僅負責清單的外層結構與 Content-Type。
package codec

import (
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"restclient/internal/compte"
)

// Format 為請求 / 回應主體格式。
type Format string

const (
	JSON Format = "JSON"
	XML  Format = "XML"
)

// ParseFormat 不分大小寫解析格式名稱。
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToUpper(strings.TrimSpace(s))) {
	case JSON:
		return JSON, nil
	case XML:
		return XML, nil
	}
	return "", fmt.Errorf("unknown format %q (want JSON or XML)", s)
}

// Codec 編解碼單一帳戶與帳戶清單。
type Codec interface {
	Format() Format
	ContentType() string
	Encode(w io.Writer, a compte.Account) error
	Decode(r io.Reader) (compte.Account, error)
	EncodeList(w io.Writer, accounts []compte.Account) error
	DecodeList(r io.Reader) ([]compte.Account, error)
}

// For 回傳指定格式的 codec；未知格式回傳 JSON。
func For(f Format) Codec {
	if f == XML {
		return xmlCodec{}
	}
	return jsonCodec{}
}

// Negotiate 依 Accept 或 Content-Type 標頭挑選 codec：
// 標頭提到 xml 時使用 XML，其餘（含空值）使用 JSON。
func Negotiate(header string) Codec {
	if strings.Contains(strings.ToLower(header), "xml") {
		return xmlCodec{}
	}
	return jsonCodec{}
}

type jsonCodec struct{}

func (jsonCodec) Format() Format      { return JSON }
func (jsonCodec) ContentType() string { return "application/json" }

func (jsonCodec) Encode(w io.Writer, a compte.Account) error {
	return json.NewEncoder(w).Encode(a)
}

func (jsonCodec) Decode(r io.Reader) (compte.Account, error) {
	var a compte.Account
	err := json.NewDecoder(r).Decode(&a)
	return a, err
}

func (jsonCodec) EncodeList(w io.Writer, accounts []compte.Account) error {
	if accounts == nil {
		accounts = []compte.Account{}
	}
	return json.NewEncoder(w).Encode(accounts)
}

func (jsonCodec) DecodeList(r io.Reader) ([]compte.Account, error) {
	var out []compte.Account
	if err := json.NewDecoder(r).Decode(&out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []compte.Account{}
	}
	return out, nil
}

// xmlList 為 XML 清單外層：<comptes><compte>...</compte></comptes>。
type xmlList struct {
	XMLName  xml.Name         `xml:"comptes"`
	Accounts []compte.Account `xml:"compte"`
}

type xmlCodec struct{}

func (xmlCodec) Format() Format      { return XML }
func (xmlCodec) ContentType() string { return "application/xml" }

func (xmlCodec) Encode(w io.Writer, a compte.Account) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	return xml.NewEncoder(w).Encode(a)
}

func (xmlCodec) Decode(r io.Reader) (compte.Account, error) {
	var a compte.Account
	err := xml.NewDecoder(r).Decode(&a)
	return a, err
}

func (xmlCodec) EncodeList(w io.Writer, accounts []compte.Account) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	return xml.NewEncoder(w).Encode(xmlList{Accounts: accounts})
}

func (xmlCodec) DecodeList(r io.Reader) ([]compte.Account, error) {
	var l xmlList
	if err := xml.NewDecoder(r).Decode(&l); err != nil {
		return nil, err
	}
	if l.Accounts == nil {
		l.Accounts = []compte.Account{}
	}
	return l.Accounts, nil
}
