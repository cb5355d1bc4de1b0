// Command afs-gateway serves a JSON search front for one AFS service
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"afsearch/internal/adapters/afs"
	"afsearch/internal/platform/config"
	"afsearch/internal/platform/logger"
	phttp "afsearch/internal/platform/net/http"
	"afsearch/internal/services/gateway"
)

func main() {
	// gateway settings live under GATEWAY_*, engine settings in the toml file and AFS_*
	gwCfg := config.New().Prefix("GATEWAY_")
	l := logger.Named(gateway.ServiceName)

	afsCfg, err := afs.LoadConfig(gwCfg.MayString("AFS_CONFIG", "afs.toml"))
	if err != nil {
		l.Fatal().Err(err).Msg("load afs config")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// reads GATEWAY_PORT / GATEWAY_ADDR
	srv := phttp.NewServer(gwCfg)
	if err := gateway.Mount(srv.Router(), gateway.Options{
		Config:         gwCfg,
		AFS:            afsCfg,
		EnableProfiler: gwCfg.MayBool("PROFILER", false),
	}); err != nil {
		l.Fatal().Err(err).Msg("mount gateway")
	}

	l.Info().Str("addr", srv.Addr()).Msg("listening")
	if err := srv.Run(ctx); err != nil {
		l.Fatal().Err(err).Msg("http server stopped")
	}
}
