package cli

import (
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/llqtool/llq/bus"
	"github.com/llqtool/llq/ingest"
	"github.com/llqtool/llq/internal/logging"
	"github.com/llqtool/llq/service"
	"github.com/llqtool/llq/tui"
)

// logFileName is the path the ingestor and query service write their
// structured diagnostics to, so they don't corrupt the TUI's raw
// terminal mode.
const logFileName = "llq.log"

// Run wires the ingestor, message bus, query service, and TUI together
// and blocks until the user quits or a background goroutine fails.
func Run(logPath string) error {
	log, logClose, err := openLog(logPath)
	if err != nil {
		return err
	}
	defer logClose()

	b := bus.New()
	cell := &service.ResultCell{}

	app := tui.New(b, cell)
	svc := service.New(b, cell, log, app.Redraw)
	ing := ingest.New(logPath, b, log)

	go svc.Run()
	go ing.Run()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		ing.Stop()
		b.SendStop()
		app.Stop()
	}()

	return app.Run()
}

// openLog creates (or appends to) a log file alongside the tailed log,
// named llq.log in the tailed file's directory.
func openLog(logPath string) (*logging.Logger, func(), error) {
	dir := filepath.Dir(logPath)
	f, err := os.OpenFile(filepath.Join(dir, logFileName), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, err
	}
	return logging.NewTo(f), func() { f.Close() }, nil
}
