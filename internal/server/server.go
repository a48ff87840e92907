package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/adaptor"
	"github.com/cloudwego/hertz/pkg/protocol/consts"

	"github.com/chevalvert/wipmap-generate/internal/atlas"
	"github.com/chevalvert/wipmap-generate/internal/batch"
	"github.com/chevalvert/wipmap-generate/internal/config"
	"github.com/chevalvert/wipmap-generate/internal/metrics"
	"github.com/chevalvert/wipmap-generate/pkg/wipmap"
)

const shutdownTimeout = 5 * time.Second

// Server serves generated tiles over HTTP.
type Server struct {
	cfg   *config.Config
	atlas *atlas.Atlas
	opts  wipmap.Options
	log   *slog.Logger
}

// New creates a new Server with the given config, atlas and logger.
func New(cfg *config.Config, a *atlas.Atlas, log *slog.Logger) *Server {
	return &Server{cfg: cfg, atlas: a, opts: a.Options(), log: log}
}

// RegisterRoutes mounts the tile API on h.
func (s *Server) RegisterRoutes(h *server.Hertz) {
	h.GET("/tiles", s.tile)
	h.GET("/tiles/:x/:y", s.tile)
	h.GET("/options", s.options)
	h.GET("/healthz", s.healthz)
	h.GET("/metrics", adaptor.HertzHandler(metrics.Handler()))
}

// Start begins serving and blocks until the context is cancelled.
func (s *Server) Start(ctx context.Context) error {
	h := server.Default(
		server.WithHostPorts(s.cfg.Addr),
		server.WithExitWaitTime(shutdownTimeout),
	)
	s.RegisterRoutes(h)

	errc := make(chan error, 1)
	go func() { errc <- h.Run() }()

	s.log.Info("server started",
		"addr", s.cfg.Addr,
		"width", s.opts.Width,
		"height", s.opts.Height,
		"cacheSize", s.cfg.CacheSize,
	)

	if s.cfg.Warm != "" {
		go s.warm(ctx)
	}

	select {
	case err := <-errc:
		if err != nil {
			return fmt.Errorf("serve on %s: %w", s.cfg.Addr, err)
		}
		return nil
	case <-ctx.Done():
	}

	s.log.Info("server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := h.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func (s *Server) warm(ctx context.Context) {
	region, err := batch.ParseRegion(s.cfg.Warm)
	if err != nil {
		s.log.Error("parse warm region", "error", err)
		return
	}
	if err := s.atlas.Warm(ctx, region, s.cfg.Workers); err != nil && !errors.Is(err, context.Canceled) {
		s.log.Error("warm atlas", "error", err)
	}
}

func (s *Server) tile(c context.Context, ctx *app.RequestContext) {
	x, errX := parseCoord(coord(ctx, "x"))
	y, errY := parseCoord(coord(ctx, "y"))
	if err := errors.Join(errX, errY); err != nil {
		writeError(ctx, consts.StatusBadRequest, "invalid_coordinate", err.Error())
		return
	}

	doc, err := s.atlas.Tile(c, x, y)
	if err != nil {
		s.log.Error("generate tile", "x", x, "y", y, "error", err)
		writeError(ctx, consts.StatusInternalServerError, "generation_failed", "tile generation failed")
		return
	}
	ctx.Data(consts.StatusOK, "application/json", doc)
	count(ctx, "tile")
}

func (s *Server) options(_ context.Context, ctx *app.RequestContext) {
	b, err := json.Marshal(s.opts)
	if err != nil {
		writeError(ctx, consts.StatusInternalServerError, "encode_failed", err.Error())
		return
	}
	ctx.Data(consts.StatusOK, "application/json", b)
	count(ctx, "options")
}

func (s *Server) healthz(_ context.Context, ctx *app.RequestContext) {
	ctx.JSON(consts.StatusOK, map[string]any{"status": "ok", "cachedTiles": s.atlas.Len()})
	count(ctx, "healthz")
}

// coord reads a coordinate from the path, or from the query string on /tiles.
func coord(ctx *app.RequestContext, name string) string {
	if v := ctx.Param(name); v != "" {
		return v
	}
	return ctx.Query(name)
}

func parseCoord(v string) (float64, error) {
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("invalid coordinate %q", v)
	}
	return f, nil
}

func count(ctx *app.RequestContext, route string) {
	metrics.RequestsTotal.WithLabelValues(route, strconv.Itoa(ctx.Response.StatusCode())).Inc()
}

func writeError(ctx *app.RequestContext, status int, code, message string) {
	metrics.RequestsTotal.WithLabelValues("error", strconv.Itoa(status)).Inc()
	ctx.JSON(status, map[string]any{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}
