package web

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-echarts/statsview"
	"github.com/go-echarts/statsview/viewer"
)

const DefaultStatsAddr = "localhost:12600"

const statsPath = "/debug/statsview"

// LaunchStats serves the runtime statistics of the emulator on addr until ctx is done.
// Charts are available at <addr>/debug/statsview and pprof at <addr>/debug/pprof/
func LaunchStats(ctx context.Context, addr string) {
	viewer.SetConfiguration(viewer.WithAddr(addr))
	mgr := statsview.New()

	go func() {
		if err := mgr.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Stats server stopped", slog.Any("error", err))
		}
	}()
	go func() {
		<-ctx.Done()
		mgr.Stop()
	}()

	slog.Info("Stats server available", slog.String("url", "http://"+addr+statsPath))
}
