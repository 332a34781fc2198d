package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/icodeforyou/mipi-go/config"
	"github.com/icodeforyou/mipi-go/database"
	"github.com/icodeforyou/mipi-go/logging"
	"github.com/icodeforyou/mipi-go/mipi"
	"github.com/icodeforyou/mipi-go/publish"
	"github.com/icodeforyou/mipi-go/slice"
	"github.com/icodeforyou/mipi-go/task"
	"github.com/icodeforyou/mipi-go/www"
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

	consoleHandler := logging.NewConsoleHandler(os.Stdout, cnfg.Logging.GetConsoleLevel())
	slog.New(consoleHandler).Debug("mipi is starting...", slog.String("version", Version))

	db, err := database.New(ctx, cnfg.Database.Path)
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

	client, err := mipi.New(ctx, logger, cnfg.Mipi.GetWsdlUrl(), &http.Client{Timeout: cnfg.Mipi.GetTimeout()})
	if err != nil {
		panic(fmt.Sprintf("failed to read MIPI service description: %v", err))
	}

	var listeners []task.SyncListener

	if cnfg.Mqtt.Enabled() && !isDevMode() {
		pub := publish.New(cnfg.Mqtt)
		if err := pub.Connect(); err != nil {
			panic(fmt.Sprintf("mqtt connection error: %v", err))
		}
		defer pub.Disconnect()

		listeners = append(listeners, func(report string, rows []database.ReportValueRow) {
			msgs := slice.Map(rows, func(r database.ReportValueRow) publish.Message {
				return publish.Message{
					Report:       r.Report,
					GasDay:       r.GasDay.String(),
					ApplicableAt: r.ApplicableAt,
					Value:        r.Value,
				}
			})
			if err := pub.Publish(report, msgs); err != nil {
				logger.Error("failed to publish report values", slog.String("report", report), slog.Any("error", err))
			}
		})
	} else {
		logger.Info("mqtt publishing disabled")
	}

	// The hub lives in the server, which needs the tasks, so the listener
	// resolves the server lazily.
	var server *www.Server
	listeners = append(listeners, func(report string, rows []database.ReportValueRow) {
		if server == nil || len(rows) == 0 {
			return
		}
		server.Hub().Notify(www.SyncEvent{
			Type:       "sync",
			Report:     report,
			FirstDay:   rows[0].GasDay.String(),
			LastDay:    rows[len(rows)-1].GasDay.String(),
			NoOfValues: len(rows),
		})
	})

	tasks := task.NewTasks(db, client, cnfg, listeners...)
	server = www.StartServer(db, tasks, cnfg.Api)

	if isDevMode() {
		logger.Info("dev mode, skipping task scheduling")
	} else {
		tasks.Run()
		defer tasks.Stop()
	}

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

	server.Run(ctx)
}

func isDevMode() bool {
	return strings.EqualFold(os.Getenv("APP_ENV"), "development")
}

func exitWithError(logger *slog.Logger, err error) {
	if err != nil {
		logger.Error("application shutting down with error", slog.Any("error", err))
	}

	time.Sleep(2 * time.Second)
	os.Exit(1)
}
