// internal/telemetry/telemetry.go
//
// Package telemetry 設定 OpenTelemetry（OTLP 匯出至 Honeycomb）。
// 匯出端點與金鑰由標準的 OTEL_* / HONEYCOMB_* 環境變數決定。
package telemetry

import (
	"log"

	"github.com/honeycombio/honeycomb-opentelemetry-go"
	"github.com/honeycombio/otel-config-go/otelconfig"
)

// Setup 在 enabled 時啟用追蹤並回傳關閉函式；停用時回傳 no-op。
// 未啟用時 otelhttp 使用全域 no-op provider，不會產生任何匯出。
func Setup(enabled bool, service string) (shutdown func(), err error) {
	if !enabled {
		return func() {}, nil
	}
	bsp := honeycomb.NewBaggageSpanProcessor()
	shutdown, err = otelconfig.ConfigureOpenTelemetry(
		otelconfig.WithServiceName(service),
		otelconfig.WithSpanProcessor(bsp),
	)
	if err != nil {
		return func() {}, err
	}
	log.Printf("telemetry enabled for %s", service)
	return shutdown, nil
}
