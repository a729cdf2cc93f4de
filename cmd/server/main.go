package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"hireloop/internal/config"
	"hireloop/internal/handler"
	"hireloop/internal/jobs"
	"hireloop/internal/logger"
	"hireloop/internal/repo"
	"hireloop/internal/telegram"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("config")
	}
	log := logger.New(cfg.LogLevel, cfg.LogFormat)

	db, err := repo.New(cfg.DatabasePath)
	if err != nil {
		log.WithError(err).Fatal("database")
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tgClient := telegram.NewClient(cfg.BotToken, log)
	botUsername, err := tgClient.GetMe(ctx)
	if err != nil {
		log.WithError(err).Fatal("telegram bot")
	}
	log.WithField("bot", botUsername).Info("telegram bot ready")

	if cfg.TelegramPolling {
		tgClient.StartPolling(ctx, func(tgUserID, chatID int64) {
			linkChat(ctx, db, tgClient, log, tgUserID, chatID)
		})
	}

	scheduler, err := jobs.Start(cfg.CleanupSchedule, db, log)
	if err != nil {
		log.WithError(err).Fatal("scheduler")
	}

	h, err := handler.New(db, handler.Options{
		BotToken:     cfg.BotToken,
		BotUsername:  botUsername,
		CSRFSecret:   cfg.CSRFSecret,
		CookieDomain: cfg.CookieDomain,
		PublicURL:    cfg.PublicURL,
		Telegram:     tgClient,
		Log:          log,
	})
	if err != nil {
		log.WithError(err).Fatal("handler")
	}

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           h.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.WithField("addr", cfg.Addr()).Info("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server")
		}
	}()

	<-ctx.Done()
	log.Info("shutting down...")

	<-scheduler.Stop().Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("graceful shutdown")
	}
}

// linkChat stores the chat a user opened with the bot so notifications can
// reach them.
func linkChat(ctx context.Context, db *repo.Repo, tg *telegram.Client, log logrus.FieldLogger, tgUserID, chatID int64) {
	user, err := db.GetUserByTgID(ctx, tgUserID)
	if err != nil {
		log.WithError(err).WithField("tg_id", tgUserID).Warn("poll: user not found")
		return
	}
	if err := db.SetTgChatID(ctx, user.ID, chatID); err != nil {
		log.WithError(err).Error("poll: set tg_chat_id")
		return
	}
	log.WithFields(logrus.Fields{"tg_chat_id": chatID, "user_id": user.ID}).Info("poll: linked chat")
	tg.SendMessage(chatID, "Notifications are on. Updates about your projects and messages will arrive here.")
}
