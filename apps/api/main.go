package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	echoapi "github.com/trezcool/registro/apps/api/echo"
	"github.com/trezcool/registro/core"
	"github.com/trezcool/registro/core/notification"
	"github.com/trezcool/registro/core/record"
	"github.com/trezcool/registro/core/user"
	emailsvc "github.com/trezcool/registro/services/email"
	logsvc "github.com/trezcool/registro/services/logger"
	toastsvc "github.com/trezcool/registro/services/toast"
	"github.com/trezcool/registro/storage/database"
	boltrepos "github.com/trezcool/registro/storage/database/boltdb"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	// set up loggers
	var logger core.Logger
	if conf.Debug {
		logger = logsvc.NewConsoleLogger(
			log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		)
	} else {
		logger = logsvc.NewRollbarLogger(
			log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
			conf,
		)
	}
	logger.Enable(true)

	// set up the store
	db, err := database.Open(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("opening store: %v", err), err)
	}
	defer func() {
		if err = db.Close(); err != nil {
			logger.Error("failed to close store", err)
		}
	}()

	// set up services
	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	}

	toaster := toastsvc.NewConsoleToaster(
		log.New(os.Stdout, "TOAST : ", log.LstdFlags),
	)
	notifSvc := notification.NewService(toaster, conf.Notification.Retention)
	recordSvc := record.NewService(boltrepos.NewRecordRepository(db), notifSvc, logger)
	usrSvc := user.NewService(boltrepos.NewUserRepository(db), recordSvc, mailSvc, conf, logger)

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	validate := validator.New()
	translator := newTranslator()
	core.InitValidators(validate, translator)
	record.InitValidators(validate, translator)
	user.InitValidators(validate, translator)

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.

	// Expose important info under /debug/vars.
	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)

	go func() {
		if err := http.ListenAndServe(conf.Server.DebugAddress(), http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(
		&echoapi.Options{
			Conf:       conf,
			Logger:     logger,
			UserSvc:    usrSvc,
			RecordSvc:  recordSvc,
			NotifSvc:   notifSvc,
			Validate:   validate,
			Translator: translator,
		},
	)

	go server.Start()

	// =========================================================================
	// Shutdown

	select {
	case err = <-server.Errors():
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		// asking listener to shutdown and shed load
		if err = server.Stop(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}
