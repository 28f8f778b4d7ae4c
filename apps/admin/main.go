package main

import (
	"log"
	"os"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

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

var logger *log.Logger

func main() {
	defer os.Exit(0)

	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	conf := core.NewConfig()
	appLogger := logsvc.NewConsoleLogger(logger)

	// set up the store
	db, err := database.Open(conf)
	errAndDie(err)
	defer db.Close()

	// set up services
	toaster := toastsvc.NewConsoleToaster(log.New(os.Stdout, "TOAST : ", log.LstdFlags))
	notifSvc := notification.NewService(toaster, conf.Notification.Retention)
	recordSvc := record.NewService(boltrepos.NewRecordRepository(db), notifSvc, appLogger)
	usrSvc := user.NewService(boltrepos.NewUserRepository(db), recordSvc, emailsvc.NewConsoleService(conf), conf, appLogger)

	validate := validator.New()
	translator := newTranslator()
	core.InitValidators(validate, translator)
	record.InitValidators(validate, translator)
	user.InitValidators(validate, translator)

	// start CLI
	cli := commandLine{
		usrSvc:   usrSvc,
		validate: validate,
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err)
	}
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}
