package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lmittmann/tint"

	"github.com/angas/powerprice-go/config"
	"github.com/angas/powerprice-go/database"
	"github.com/angas/powerprice-go/entsoe"
	"github.com/angas/powerprice-go/logging"
	"github.com/angas/powerprice-go/prices"
	"github.com/angas/powerprice-go/publisher"
	"github.com/angas/powerprice-go/task"
	"github.com/angas/powerprice-go/www"
	"github.com/angas/powerprice-go/zones"
)

var Version = "?.?.?"

func main() {
	defer func() {
		if err := recover(); err != nil {
			exitWithError(slog.Default(), fmt.Errorf("application panicked: %v", err))
		} else {
			slog.Default().Info("application is shutting down...")
		}
	}()

	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cnfg, err := config.Load(*configPath)
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	consoleHandler := tint.NewHandler(os.Stdout, &tint.Options{
		Level:      cnfg.Logging.GetConsoleLevel(),
		TimeFormat: time.RFC3339,
	})
	slog.New(consoleHandler).Debug("powerprice is starting...", slog.String("version", Version))

	db, err := database.New(ctx, cnfg.Database.GetPath())
	if err != nil {
		panic(fmt.Sprintf("failed to connect to database: %v", err))
	}
	defer db.Close()

	logger := slog.New(logging.NewMultiHandler(
		consoleHandler,
		logging.NewSQLiteHandler(db, cnfg.Logging.GetDbLevel(), cnfg.Logging.GetDbAttrsFormat())))
	slog.SetDefault(logger)

	// Now we can use the logger to log database operations into the database itself
	db.SetLogger(logger.With("module", "database"))

	registry := zones.NewRegistry(cnfg.ZoneList())
	client := entsoe.New(cnfg.Entsoe.GetBaseUrl(), cnfg.Entsoe.Token, cnfg.Entsoe.GetTimeout())

	var cache *prices.Cache
	if cnfg.Cache.IsEnabled() {
		cache = prices.NewCache(cnfg.Cache.GetTtl())
	} else {
		logger.Info("price caching is disabled")
	}

	fetcher := prices.NewFetcher(
		logger.With("module", "prices"),
		registry,
		client,
		cache,
		cnfg.Service.GetMaxDaysBack())

	var pub *publisher.Publisher
	if cnfg.Mqtt.IsEnabled() {
		pub = publisher.New(cnfg.Mqtt)
		if err := pub.Connect(); err != nil {
			panic(fmt.Sprintf("MQTT connection error: %v", err))
		}
		defer pub.Disconnect()
	}

	tasks := task.NewTasks(db, fetcher, pub, cnfg)
	tasks.Run()
	defer tasks.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case <-ctx.Done():
			logger.Info("main context done")
		case sig := <-sigCh:
			logger.Info("received signal", slog.Any("signal", sig))
			cancel()
		}
	}()

	server := www.StartServer(db, fetcher, cnfg, Version)
	server.Run(ctx)
}

func exitWithError(logger *slog.Logger, err error) {
	if err != nil {
		logger.Error("application shutting down with error", slog.Any("error", err))
	}

	time.Sleep(2 * time.Second)
	os.Exit(1)
}
