package main

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"flockscope/internal/server"
)

var (
	tokenSubject string
	tokenTTL     time.Duration
)

var tokenCommand = &cobra.Command{
	Use:   "token",
	Short: "Mint an API token signed with jwtSecret",
	Run: func(cmd *cobra.Command, args []string) {
		conf := loadConfig()
		if conf.JwtSecret == "" {
			logrus.Fatal("jwtSecret is empty, the API is unauthenticated")
		}
		token, err := server.GenToken(conf.JwtSecret, tokenSubject, tokenTTL)
		if err != nil {
			logrus.WithError(err).Fatal("sign token failed")
		}
		fmt.Println(token)
	},
}

func init() {
	tokenCommand.Flags().StringVar(&tokenSubject, "subject", "flockscope-cli", "Token subject")
	tokenCommand.Flags().DurationVar(&tokenTTL, "ttl", 7*24*time.Hour, "Token lifetime")
}
