package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	echoapi "github.com/trezcool/certquiz/apps/api/echo"
	"github.com/trezcool/certquiz/core"
	"github.com/trezcool/certquiz/core/quiz"
	"github.com/trezcool/certquiz/core/score"
	"github.com/trezcool/certquiz/core/settings"
	"github.com/trezcool/certquiz/core/user"
	emailsvc "github.com/trezcool/certquiz/services/email"
	logsvc "github.com/trezcool/certquiz/services/logger"
	"github.com/trezcool/certquiz/storage/jsondb"
)

const shutdownTimeout = 5 * time.Second

func main() {
	// =========================================================================
	// Set up Dependencies

	std := log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	var logger core.Logger
	if core.Conf.Debug {
		logger = logsvc.NewStdLogger(std)
	} else {
		logger = logsvc.NewRollbarLogger(std, core.Conf)
	}

	db, err := jsondb.Open(core.Conf.DataDir, logger)
	if err != nil {
		logger.Fatal(fmt.Sprintf("opening data directory: %v", err), err)
	}

	var mailSvc core.EmailService
	if core.Conf.Debug {
		mailSvc = emailsvc.NewConsoleService(core.Conf.AppName, core.Conf.DefaultFromEmail)
	} else {
		mailSvc = emailsvc.NewSendgridService(core.Conf.SendgridAPIKey, core.Conf.AppName, core.Conf.DefaultFromEmail, logger)
	}

	usrSvc := user.NewService(jsondb.NewUserRepository(db), mailSvc, logger)
	quizSvc := quiz.NewService(jsondb.NewQuestionRepository(db))
	scoreSvc := score.NewService(jsondb.NewScoreRepository(db))
	settingsSvc := settings.NewService(jsondb.NewSettingsRepository(db))

	// =========================================================================
	// Start API Service

	logger.Info(fmt.Sprintf("Application initializing : version %q", core.Conf.Build))
	defer logger.Info("Application stopped")

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	app := echoapi.NewServer(
		&echoapi.Options{
			Addr:        core.Conf.ServerAddr,
			Logger:      logger,
			MailSvc:     mailSvc,
			UserSvc:     usrSvc,
			QuizSvc:     quizSvc,
			ScoreSvc:    scoreSvc,
			SettingsSvc: settingsSvc,
		},
		shutdown,
	)

	go app.Start()

	// =========================================================================
	// Shutdown

	sig := <-shutdown
	logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

	// give outstanding requests a deadline for completion
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := app.Stop(ctx); err != nil {
		logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)
	}
}
