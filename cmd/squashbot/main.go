package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/benbjohnson/clock"
	"github.com/joho/godotenv"
	"github.com/omarshaarawi/squashbot/internal/api/squashlevels"
	"github.com/omarshaarawi/squashbot/internal/bot"
	"github.com/omarshaarawi/squashbot/internal/config"
	"github.com/omarshaarawi/squashbot/internal/models"
	"github.com/omarshaarawi/squashbot/internal/repository/memory"
	"github.com/omarshaarawi/squashbot/internal/scheduler"
	"github.com/omarshaarawi/squashbot/internal/service"
	"github.com/omarshaarawi/squashbot/internal/web"
)

func main() {
	if err := run(); err != nil {
		slog.Error("Error running application", "error", err)
		os.Exit(1)
	}
}

func run() error {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Error("Error loading .env file", "error", err)
	}

	cfg, err := config.New()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := squashlevels.NewClient(cfg.SquashLevels.BaseURL)
	if err != nil {
		return err
	}
	defer client.Close()

	api := squashlevels.NewAPI(client)
	repo := memory.NewRepository()
	sensorService := service.NewSensorService(api, repo, clock.New(), cfg.SquashLevels)

	creds := models.Credentials{Username: cfg.SquashLevels.Username, Password: cfg.SquashLevels.Password}
	cfg.SquashLevels.Password = ""
	if err := sensorService.Setup(ctx, creds); err != nil {
		return err
	}

	if cfg.TelegramBot.Token != "" {
		telegramBot, err := bot.NewTelegramBot(cfg.TelegramBot.Token, cfg.TelegramBot.ChatID, sensorService, sensorService.Poll)
		if err != nil {
			return err
		}
		sensorService.Subscribe(telegramBot.Notify)

		go func() {
			if err := telegramBot.Start(ctx); err != nil {
				slog.Error("Error running telegram bot", "error", err)
			}
		}()
	}

	sched, err := scheduler.NewScheduler(ctx, sensorService, cfg.Poll)
	if err != nil {
		return err
	}

	if err := sched.Start(); err != nil {
		return err
	}
	defer func() {
		err := sched.Stop()
		if err != nil {
			slog.Error("Error stopping scheduler", "error", err)
		}
	}()

	server := web.NewServer(cfg.HTTP.Addr, sensorService)
	if err := server.ListenAndServe(ctx); err != nil {
		slog.Error("Error running HTTP server", "error", err)
		return err
	}

	slog.Info("Shutting down gracefully...")
	return nil
}
