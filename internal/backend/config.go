package backend

import (
	"errors"
	"fmt"

	"ecotrack/internal/config"
)

// Config is the slice of application config the factory needs.
type Config struct {
	SQLiteDBPath  string
	OverviewYears int

	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	Journal                  JournalType
	GoogleSpreadsheetID      string
	GoogleJournalSheet       string
	GoogleServiceAccountJSON string
	GoogleServiceAccountFile string
}

func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, errors.New("app config is nil")
	}
	journal := JournalType(appConfig.JournalBackend)
	if !journal.IsValid() {
		return Config{}, fmt.Errorf("invalid journal backend in config: %s", appConfig.JournalBackend)
	}
	return Config{
		SQLiteDBPath:  appConfig.SQLiteDBPath,
		OverviewYears: appConfig.OverviewYears,

		AMQPURL:      appConfig.AMQPURL,
		AMQPExchange: appConfig.AMQPExchange,
		AMQPQueue:    appConfig.AMQPQueue,

		Journal:                  journal,
		GoogleSpreadsheetID:      appConfig.GoogleSpreadsheetID,
		GoogleJournalSheet:       appConfig.GoogleJournalSheet,
		GoogleServiceAccountJSON: appConfig.GoogleServiceAccountJSON,
		GoogleServiceAccountFile: appConfig.GoogleServiceAccountFile,
	}, nil
}
