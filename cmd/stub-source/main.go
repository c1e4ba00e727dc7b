// Command stub-source runs a local stand-in for the groupware calendar
// API so the bridge can be exercised without real credentials.
package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"time"

	"github.com/yymzk/calbridge/internal/stubsource"
	"github.com/yymzk/calbridge/pkg/logger"
)

func main() {
	addr := flag.String("addr", ":9281", "listen address")
	count := flag.Int("events", 40, "number of events to generate")
	flag.Parse()

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	defer func() { _ = logger.Sync() }()

	srv := stubsource.NewServer(stubsource.Generate(time.Now(), *count))
	mux := http.NewServeMux()
	srv.Register(mux)

	log := logger.Get()
	log.Info(context.Background(), "stub source calendar listening", logger.String("addr", *addr))
	if err := http.ListenAndServe(*addr, mux); err != nil {
		os.Stderr.WriteString("stub source failed: " + err.Error() + "\n")
	}
}
