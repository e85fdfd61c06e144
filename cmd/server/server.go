package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/matryer/way"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/zucenko/pacroom/config"
	"github.com/zucenko/pacroom/rewards"
	"github.com/zucenko/pacroom/schedule"
	"github.com/zucenko/pacroom/server"
)

const (
	LOOP_BUFFER      = 1024
	REWARDS_BUFFER   = 128
	SHUTDOWN_TIMEOUT = 5 * time.Second
)

type Server struct {
	router     *way.Router
	GameServer *server.GameServer
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config %v", err)
	}
	cfg.SetupLogging()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	loop := schedule.NewLoop(LOOP_BUFFER)
	notifier := rewards.NewAsync(rewards.Logger{}, REWARDS_BUFFER)
	s := Server{
		GameServer: server.NewGameServer(loop, notifier, cfg.RoomOptions()),
	}
	s.routes()
	httpServer := &http.Server{Addr: ":" + cfg.Port, Handler: s.router}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return loop.Run(ctx) })
	g.Go(func() error { return notifier.Run(ctx) })
	g.Go(func() error {
		log.Infof("listening on :%s", cfg.Port)
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), SHUTDOWN_TIMEOUT)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})
	if err := g.Wait(); err != nil {
		log.Fatalln(err)
	}
	log.Info("server stopped")
}
