// Package gateway mounts the search gateway: a JSON front for one AFS search service
package gateway

import (
	"time"

	"afsearch/internal/adapters/afs"
	"afsearch/internal/platform/config"
	"afsearch/internal/platform/logger"
	phttp "afsearch/internal/platform/net/http"
	"afsearch/internal/platform/net/middleware"
	pstrings "afsearch/internal/platform/strings"
	gwhttp "afsearch/internal/services/gateway/http"
	"afsearch/internal/services/gateway/service"
)

// ServiceName is reported by the health and version endpoints
const ServiceName = "afs-gateway"

// Options are the gateway options
type Options struct {
	Config config.Conf
	AFS    afs.Config
	// Conn and ACPConn override the connectors built from AFS, mostly for tests
	Conn           afs.Connector
	ACPConn        afs.Connector
	EnableProfiler bool
}

// Mount builds the gateway service and mounts its routes on r
func Mount(r phttp.Router, opt Options) error {
	afs.RegisterTags()
	cfg := opt.Config
	log := logger.Named("gateway")

	conn := opt.Conn
	if conn == nil {
		c, err := opt.AFS.NewClient()
		if err != nil {
			return err
		}
		conn = c
	}
	acpConn := opt.ACPConn
	if acpConn == nil {
		c, err := opt.AFS.NewACPClient()
		if err != nil {
			return err
		}
		acpConn = c
	}

	if p := cfg.MayString("LINK_PATH", ""); p != "" {
		opt.AFS.Links.Path = p
	}
	s, err := service.New(service.Deps{
		Conn:    conn,
		ACPConn: acpConn,
		Coder:   opt.AFS.Coder(),
		Base:    opt.AFS.NewQuery,
		Langs:   cfg.MayCSV("DEFAULT_LANGS", nil),
	})
	if err != nil {
		return err
	}

	for _, mw := range middleware.Defaults(cfg.MayDuration("REQUEST_TIMEOUT", 15*time.Second)) {
		r.Use(mw)
	}
	r.Use(
		middleware.AccessLog(middleware.AccessLogOptions{Slow: cfg.MayDuration("SLOW_REQUEST", time.Second)}),
		middleware.SessionCookie(afs.SessionCookie),
		middleware.CORS(middleware.CORSOptions{
			AllowedOrigins:   cfg.MayCSV("CORS_ORIGINS", nil),
			AllowCredentials: cfg.MayBool("CORS_CREDENTIALS", false),
		}),
	)

	phttp.MountProfiler(r, "/debug", opt.EnableProfiler)
	deps := gwhttp.Deps{
		ServiceName: ServiceName,
		StartedAt:   time.Now(),
		Cookies:     cfg.MayBool("COOKIES", true),
	}
	if base := cfg.MayString("BASE_PATH", ""); base != "" {
		r.Route(pstrings.MustPrefix(base), func(sub phttp.Router) { gwhttp.Register(sub, s, deps) })
	} else {
		gwhttp.Register(r, s, deps)
	}

	log.Info().
		Str("afs_host", opt.AFS.Connector.Host).
		Int("afs_service", opt.AFS.Connector.Service).
		Str("link_path", opt.AFS.Links.Path).
		Msg("gateway mounted")
	return nil
}
