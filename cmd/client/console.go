// cmd/client/console.go
//
// 終端機版的 Renderer / Notifier / Forms：以 tabwriter 輸出清單，
// 通知寫到 stderr，刪除前在 stdin 詢問確認。
package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"restclient/internal/adapter"
	"restclient/internal/compte"
	"restclient/internal/i18n"
	"restclient/internal/ui"
)

type eventKind int

const (
	rendered eventKind = iota
	failed
	canceled
)

type event struct {
	kind eventKind
	msg  string
}

// errReported 代表錯誤已由 console 顯示，main 不再重複輸出。
var errReported = errors.New("reported")

// awaitResult 等待下一個 event：重繪或使用者取消皆為成功，錯誤通知回傳 errReported。
func awaitResult(events <-chan event, timeout time.Duration) error {
	select {
	case ev := <-events:
		if ev.kind == failed {
			return errReported
		}
		return nil
	case <-time.After(timeout):
		return errors.New("timed out waiting for the server")
	}
}

// console 將 Controller 的輸出轉為 event，供 main 等待結果。
type console struct {
	out    io.Writer
	errOut io.Writer
	in     *bufio.Reader
	msgs   *i18n.Catalog
	events chan event

	// 表單預設值，來自旗標
	balance string
	typ     compte.Type
	yes     bool
}

func newConsole(out, errOut io.Writer, in io.Reader, msgs *i18n.Catalog) *console {
	return &console{
		out:    out,
		errOut: errOut,
		in:     bufio.NewReader(in),
		msgs:   msgs,
		events: make(chan event, 8),
	}
}

func (c *console) Render(rows []adapter.Row) {
	if len(rows) == 0 {
		fmt.Fprintln(c.out, c.msgs.T("empty_list"))
	} else {
		tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
			c.msgs.T("col_id"), c.msgs.T("col_balance"), c.msgs.T("col_type"), c.msgs.T("col_date"))
		for _, r := range rows {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.ID, r.Balance, r.Type, r.Date)
		}
		tw.Flush()
	}
	c.events <- event{kind: rendered}
}

func (c *console) Notify(level ui.Level, msg string) {
	fmt.Fprintln(c.errOut, msg)
	if level == ui.Error {
		c.events <- event{kind: failed, msg: msg}
	}
}

func (c *console) NewAccount(submit func(string, compte.Type)) {
	fmt.Fprintln(c.errOut, c.msgs.T("add_title"))
	submit(c.balance, c.typ)
}

// EditAccount 未指定 -solde / -type 時沿用目前值。
func (c *console) EditAccount(a compte.Account, submit func(string, compte.Type)) {
	fmt.Fprintln(c.errOut, c.msgs.T("edit_title", a.IDString()))
	balance, typ := c.balance, c.typ
	if balance == "" {
		balance = a.Balance.String()
	}
	if typ == "" {
		typ = a.Type
	}
	submit(balance, typ)
}

func (c *console) ConfirmDelete(a compte.Account, confirm func()) {
	if c.yes || c.ask(c.msgs.T("confirm_delete", a.IDString())) {
		confirm()
		return
	}
	c.events <- event{kind: canceled}
}

func (c *console) ask(question string) bool {
	fmt.Fprintf(c.errOut, "%s [y/N] ", question)
	line, err := c.in.ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes", "o", "oui":
		return true
	}
	return false
}
