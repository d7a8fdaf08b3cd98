package main

import (
	"log"
	"os"

	"github.com/trezcool/certquiz/core"
	logsvc "github.com/trezcool/certquiz/services/logger"
	"github.com/trezcool/certquiz/storage/jsondb"
)

var logger *log.Logger

func main() {
	defer os.Exit(0)

	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	db, err := jsondb.Open(core.Conf.DataDir, logsvc.NewStdLogger(logger))
	errAndDie(err)

	// start CLI
	cli := commandLine{
		db:           db,
		usrRepo:      jsondb.NewUserRepository(db),
		quizRepo:     jsondb.NewQuestionRepository(db),
		scoreRepo:    jsondb.NewScoreRepository(db),
		settingsRepo: jsondb.NewSettingsRepository(db),
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
