package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/jmoiron/sqlx"

	echoapi "github.com/kostask/taskboard/apps/api/echo"
	"github.com/kostask/taskboard/core"
	"github.com/kostask/taskboard/core/identity"
	"github.com/kostask/taskboard/core/notification"
	"github.com/kostask/taskboard/core/policy"
	"github.com/kostask/taskboard/core/task"
	advisorsvc "github.com/kostask/taskboard/services/codeadvisor"
	emailsvc "github.com/kostask/taskboard/services/email"
	logsvc "github.com/kostask/taskboard/services/logger"
	"github.com/kostask/taskboard/storage/database"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)

	db, err := setUpDB(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	defer func() {
		if err = db.Close(); err != nil {
			logger.Error(fmt.Sprintf("closing database: %v", err), err)
		}
	}()

	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	}

	notifEngine := notification.NewEngine(database.NewNotificationRepository(db), logger)
	notifSvc := notification.NewService(database.NewNotificationRepository(db))
	identitySvc := identity.NewService(database.NewIdentityRepository(db), notifEngine, mailSvc, logger, conf)
	taskSvc := task.NewService(database.NewTaskRepository(db), notifEngine)

	var advisor core.CodeAdvisor
	if conf.OpenRouter.ApiKey != "" {
		advisor = advisorsvc.NewOpenRouterService(conf, logger)
	} else {
		advisor = advisorsvc.NewDummyAdvisor()
	}

	// =========================================================================
	// Start API Service

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	server := echoapi.NewServer(
		echoapi.ServerDeps{
			Conf:            conf,
			Logger:          logger,
			IdentitySvc:     identitySvc,
			TaskSvc:         taskSvc,
			NotificationSvc: notifSvc,
			Advisor:         advisor,
			Policy:          policy.New(policy.DefaultConfig()),
		},
	)

	go func() {
		server.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err = <-server.Errors():
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
		defer cancel()

		if err = server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}

func setUpDB(conf *core.Config) (*sqlx.DB, error) {
	db, err := database.Open(conf)
	if err != nil {
		return nil, err
	}
	if err = database.EnsureSchema(db); err != nil {
		return nil, err
	}
	return db, nil
}
