// Command serve runs the backend HTTP API. It listens until SIGINT or
// SIGTERM, then drains in-flight requests with a bounded graceful shutdown.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"gamedata/internal/webapi"
)

const shutdownTimeout = 10 * time.Second

func main() {
	var (
		flagAddr   = flag.String("addr", webapi.DefaultAddr, "listen address")
		flagOrigin = flag.String("origin", webapi.DefaultOrigin, "comma-separated browser origins allowed to call the API")
	)
	flag.Parse()

	srv := webapi.NewServer(webapi.Config{
		Addr:           *flagAddr,
		AllowedOrigins: splitOrigins(*flagOrigin),
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(srv.Start)
	g.Go(func() error {
		<-ctx.Done()
		log.Printf("serve: shutting down")
		shCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shCtx)
	})

	if err := g.Wait(); err != nil {
		log.Fatalf("serve: %v", err)
	}
}

// splitOrigins turns the -origin flag into a clean origin list, dropping
// empty entries so a trailing comma is harmless.
func splitOrigins(s string) []string {
	var out []string
	for _, o := range strings.Split(s, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
