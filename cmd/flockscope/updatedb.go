package main

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"flockscope/internal/store"
)

var updateDBCommand = &cobra.Command{
	Use:   "updatedb",
	Short: "Create or update the mysql record table",
	Run: func(cmd *cobra.Command, args []string) {
		conf := loadConfig()

		db, err := store.NewSqlStore(conf.Store.DB)
		if err != nil {
			logrus.Fatal("failed to init database", err)
		}
		defer db.Close()

		err = db.AutoMigrate()
		if err != nil {
			logrus.Fatal("failed to auto migrate database", err)
		} else {
			logrus.Infof("Database tables update successfully")
		}
	},
}
