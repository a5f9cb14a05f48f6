// Command yuzu-server hosts a Yuzu server attached to a gin router,
// the same host-owned-http.Server attachment style
// bringyour-connect/tetherctl/api.go uses for its own API server.
package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yuzu-sync/yuzu/cmd/yuzu-server/config"
	"github.com/yuzu-sync/yuzu/server"
)

var configPath = flag.String("config", "", "path to yuzu-server.toml")

func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("yuzu-server: load config: %v", err)
	}

	router := gin.Default()
	router.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	httpServer := &http.Server{Handler: router}

	srv, err := server.New(server.Options{
		Initial:    map[string]any{},
		ServerRef:  httpServer,
		Path:       cfg.Path,
		BatchDelay: cfg.BatchDelay,
	})
	if err != nil {
		log.Fatalf("yuzu-server: %v", err)
	}
	defer srv.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	httpServer.Addr = portAddr(cfg.Port)
	log.Printf("yuzu-server: listening on %s%s", httpServer.Addr, cfg.Path)
	if err := srv.ListenAndServe(ctx); err != nil {
		log.Fatalf("yuzu-server: %v", err)
	}
}

func portAddr(port int) string {
	if port == 0 {
		port = 8080
	}
	return ":" + strconv.Itoa(port)
}
