// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package main

import (
	"context"
	"net"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// server is the HTTP inspector.
type server struct {
	addr string
	sim  *simulation
	log  zerolog.Logger
}

func (s *server) handler() http.Handler {
	e := echo.New()
	e.HideBanner = true
	e.GET("/pins", func(c echo.Context) error {
		return c.JSON(http.StatusOK, s.sim.states())
	})
	e.GET("/pins/:n", func(c echo.Context) error {
		n, err := strconv.Atoi(c.Param("n"))
		if err != nil {
			return echo.NewHTTPError(http.StatusNotFound, "no such pin")
		}
		d, ok := s.sim.detail(n)
		if !ok {
			return echo.NewHTTPError(http.StatusNotFound, "no such pin")
		}
		return c.JSON(http.StatusOK, d)
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	return e
}

// Run serves until ctx is canceled.
func (s *server) Run(ctx context.Context) error {
	lis, err := net.Listen("tcp", s.addr)
	if err != nil {
		return maskAny(err)
	}
	srv := http.Server{Handler: s.handler()}
	errc := make(chan error, 1)
	s.log.Info().Str("address", lis.Addr().String()).Msg("Serving HTTP")
	go func() {
		errc <- srv.Serve(lis)
	}()
	select {
	case <-ctx.Done():
		s.log.Info().Msg("Closing server")
		return maskAny(srv.Shutdown(context.Background()))
	case err := <-errc:
		return maskAny(err)
	}
}
