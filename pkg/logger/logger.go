// Package logger 建立全域共用的 slog.Logger
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// New 依設定建立 logger
//
// 參數:
//
//	level: debug / info / warn / error，無法解析時使用 info
//	format: json 或 text
//	w: 輸出目標，nil 時為 os.Stdout
func New(level, format string, w io.Writer) *slog.Logger {
	if w == nil {
		w = os.Stdout
	}
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: lvl}

	var handler slog.Handler
	if strings.EqualFold(format, "json") {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}
