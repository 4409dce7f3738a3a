package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"eggtimer/internal/clock"
	"eggtimer/internal/config"
	"eggtimer/internal/handlers"
	"eggtimer/internal/logger"
	"eggtimer/internal/notify"
	"eggtimer/internal/repository"
	"eggtimer/internal/repository/db"
	"eggtimer/internal/server"
	"eggtimer/internal/service"

	"github.com/urfave/cli"
)

const shutdownTimeout = 10 * time.Second

func serve(_ *cli.Context) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	log := logger.Get(cfg.Log.Level)

	conn, err := db.InitDB(cfg.DB.Path)
	if err != nil {
		return fmt.Errorf("init sqlite: %w", err)
	}
	defer func() {
		if cerr := conn.Close(); cerr != nil {
			log.Errorw("failed to close sqlite", "err", cerr)
		}
	}()

	services := service.NewService(repository.NewRepository(conn), cfg, service.Deps{
		Clock:    clock.Real(),
		Notifier: notify.New(cfg.Notify.AppName, cfg.Notify.Enabled),
		Log:      log,
	})
	defer services.Close()

	// background goroutines (scheduler, countdown) stop with ctx
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := services.Run(ctx); err != nil {
		return err
	}

	apiHandler := handlers.NewHandler(services, log, handlers.WithPingPeriod(cfg.WS.PingPeriod))
	srv := &server.Server{}
	errc := make(chan error, 1)
	go func() {
		errc <- srv.Run(cfg.Port, apiHandler.InitRoutes())
	}()
	log.Infow("server started", "addr", server.Addr(cfg.Port), "db", cfg.DB.Path)

	return waitForShutdown(cancel, srv, errc, log)
}

// waitForShutdown blocks until a termination signal or a server failure,
// then stops background work and drains in-flight requests.
func waitForShutdown(cancel context.CancelFunc, srv *server.Server, errc <-chan error, log *logger.Logger) error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case <-quit:
	case err := <-errc:
		cancel()
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	}

	log.Infow("shutting down server...")
	cancel()

	ctx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	return nil
}

func notifyOnce(_ *cli.Context) error {
	if message == "" {
		return errors.New("--message is required")
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	log := logger.New(cfg.Log.Level)

	n := notify.New(cfg.Notify.AppName, cfg.Notify.Enabled)
	if !n.IsSupported() {
		log.Warnw("desktop notifications are not supported here; nothing will be shown")
	}
	presenter := service.NewNotificationService(cfg.Notify, n, nil, nil, clock.Real(), log)
	defer presenter.Close()

	shown, err := presenter.Show(context.Background(), channelID, message)
	if err != nil {
		return err
	}
	fmt.Printf("%s\t%s\t%s\n", shown.ID, shown.ChannelID, shown.Message)
	return nil
}

func listOptions(_ *cli.Context) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	for _, o := range service.DurationOptions(cfg.Timer) {
		fmt.Printf("%d\t%s\t%dms\n", o.Index, o.Label, o.Millis)
	}
	return nil
}

func listWakeups(_ *cli.Context) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	conn, err := db.InitDB(cfg.DB.Path)
	if err != nil {
		return fmt.Errorf("init sqlite: %w", err)
	}
	defer conn.Close()

	alarms := service.NewAlarmService(repository.NewRepository(conn).Wakeups, clock.Real(), logger.Nop())
	pending, err := alarms.Pending(context.Background())
	if err != nil {
		return err
	}
	for _, w := range pending {
		kind := "once"
		if w.Recurring() {
			kind = w.CronExpr
		}
		fmt.Printf("%s\t%s\t%s\n", w.Key, time.UnixMilli(w.TriggerAt).Format(time.RFC3339), kind)
	}
	return nil
}
