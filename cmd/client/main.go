// cmd/client/main.go

// 終端機客戶端：列出、新增、修改、刪除 /comptes 帳戶。
// 設定來自環境變數（COMPTES_*，可放在 .env），命令列旗標優先。
//
//	client -cmd list -format XML
//	client -cmd add -solde 1500,50 -type EPARGNE
//	client -cmd update -id 3 -solde 20
//	client -cmd delete -id 3 -yes
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"restclient/internal/codec"
	"restclient/internal/compte"
	"restclient/internal/config"
	"restclient/internal/i18n"
	"restclient/internal/repository"
	"restclient/internal/telemetry"
	"restclient/internal/ui"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		fmt.Println("Error:", err)
		os.Exit(1)
	}
	cfg, err := config.LoadClient(context.Background())
	if err != nil {
		fmt.Println("Error:", err)
		os.Exit(1)
	}

	cmd := flag.String("cmd", "list", "Command: list|add|update|delete")
	serverFlag := flag.String("server", "", "Override server base URL (e.g. http://10.0.2.2:8080)")
	formatFlag := flag.String("format", "", "Body format: JSON|XML")
	langFlag := flag.String("lang", "", "Message language: fr|en")
	id := flag.Int64("id", 0, "Account id (update/delete)")
	solde := flag.String("solde", "", "Balance (add/update)")
	typ := flag.String("type", "", "Account type: COURANT|EPARGNE (add/update)")
	yes := flag.Bool("yes", false, "Delete without confirmation")
	flag.Parse()

	if *serverFlag != "" {
		cfg.BaseURL = *serverFlag
	}
	if *formatFlag != "" {
		cfg.Format = *formatFlag
	}
	if *langFlag != "" {
		cfg.Lang = *langFlag
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	opts := options{cmd: *cmd, id: *id, balance: *solde, yes: *yes}
	if *typ != "" {
		t, err := compte.ParseType(*typ)
		if err != nil {
			fmt.Println("Error:", err)
			os.Exit(1)
		}
		opts.typ = t
	}

	if err := run(cfg, opts); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Println("Error:", err)
		}
		os.Exit(1)
	}
}

type options struct {
	cmd     string
	id      int64
	balance string
	typ     compte.Type
	yes     bool
}

func run(cfg config.Client, opts options) error {
	format, err := codec.ParseFormat(cfg.Format)
	if err != nil {
		return err
	}
	msgs, err := i18n.Load(cfg.Lang)
	if err != nil {
		return err
	}
	shutdownTelemetry, err := telemetry.Setup(cfg.Telemetry, "comptes-client")
	if err != nil {
		return err
	}
	defer shutdownTelemetry()

	loop := ui.NewLoop()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go loop.Run(ctx)

	repo, err := repository.New(cfg.BaseURL, format,
		repository.WithHTTPClient(&http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}),
	)
	if err != nil {
		return err
	}

	con := newConsole(os.Stdout, os.Stderr, os.Stdin, msgs)
	con.balance, con.typ, con.yes = opts.balance, opts.typ, opts.yes
	ctrl := ui.NewController(loop, repo, con, con, con, msgs)
	defer loop.Sync(ctrl.Close)

	// 變更後會再重新載入一次，因此最多等兩個請求的時間
	wait := func() error { return awaitResult(con.events, 2*cfg.Timeout+time.Second) }

	switch opts.cmd {
	case "list":
		loop.Sync(ctrl.Start)
		return wait()

	case "add":
		if con.typ == "" {
			con.typ = compte.Courant
		}
		loop.Sync(ctrl.RequestAdd)
		return wait()

	case "update", "delete":
		if opts.id <= 0 {
			return errors.New("-id required")
		}
		loop.Sync(ctrl.Start)
		if err := wait(); err != nil {
			return err
		}
		var reqErr error
		loop.Sync(func() {
			ad := ctrl.Adapter()
			i := ad.IndexOf(opts.id)
			if i < 0 {
				reqErr = fmt.Errorf("%w: id %d", compte.ErrNotFound, opts.id)
				return
			}
			if opts.cmd == "update" {
				reqErr = ad.RequestUpdate(i)
			} else {
				reqErr = ad.RequestDelete(i)
			}
		})
		if reqErr != nil {
			return reqErr
		}
		return wait()
	}
	return fmt.Errorf("unknown command %q", opts.cmd)
}
