package main

import (
	"context"
	"flag"
	"net/http"
	"time"

	"pricewatch-backend/lib/configutil"
	configlibsql "pricewatch-backend/lib/configutil/libsql"
	"pricewatch-backend/lib/mailer"
	"pricewatch-backend/lib/serviceutil"
	"pricewatch-backend/lib/telemetry"
	"pricewatch-backend/services/bot"
	"pricewatch-backend/services/bot/telegram"
	"pricewatch-backend/services/tracker"
	trackerdb "pricewatch-backend/services/tracker/db"
)

type TelegramConfig struct {
	Token string `json:"token"`
}

type Config struct {
	Telegram TelegramConfig      `json:"telegram"`
	Database configlibsql.Struct `json:"database"`
	// PollIntervalSeconds defaults to 30 when unset.
	PollIntervalSeconds int `json:"poll_interval_seconds"`
	// DispatchCron defaults to the top of every hour when unset.
	DispatchCron string            `json:"dispatch_cron"`
	Smtp         mailer.SmtpConfig `json:"smtp"`
	// OpsPort exposes /healthz; 0 disables the listener.
	OpsPort int `json:"ops_port"`
}

func main() {
	verbose := flag.Bool("v", false, "enable verbose logging")
	flag.Parse()

	ctx := serviceutil.SignalContext()
	telemetry.InitSlog(*verbose)

	config, err := configutil.ReadConfig[Config]("config.json5")
	if err != nil {
		serviceutil.Fatal("failed to read config", err)
	}

	err = telemetry.SetupFromEnv(ctx, "pricewatchd")
	if err != nil {
		serviceutil.Fatal("failed to setup telemetry", err)
	}
	defer telemetry.Shutdown(context.Background())
	telemetry.InstrumentPerfStats(ctx)

	db, err := config.Database.OpenDB(trackerdb.Schema)
	if err != nil {
		serviceutil.Fatal("failed to open database", err)
	}

	service := tracker.NewService(db)
	err = service.Seed(ctx)
	if err != nil {
		serviceutil.Fatal("failed to seed items", err)
	}

	client, err := telegram.New(config.Telegram.Token)
	if err != nil {
		serviceutil.Fatal("failed to connect to telegram", err)
	}

	poller := tracker.NewPoller(
		service,
		time.Duration(config.PollIntervalSeconds)*time.Second,
		mailer.New(config.Smtp),
	)
	go poller.Run(ctx)

	dispatcher := tracker.NewDispatcher(service, client, config.DispatchCron)
	err = dispatcher.Start(ctx)
	if err != nil {
		serviceutil.Fatal("failed to start dispatcher", err)
	}

	go client.Run(ctx, bot.New(service, client))

	if config.OpsPort != 0 {
		mux := http.NewServeMux()
		mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
			err := db.PingContext(r.Context())
			if err != nil {
				http.Error(w, err.Error(), http.StatusServiceUnavailable)
				return
			}
			w.Write([]byte("ok"))
		})
		go serviceutil.StartHttpServer(config.OpsPort, mux)
	}

	<-ctx.Done()
}
