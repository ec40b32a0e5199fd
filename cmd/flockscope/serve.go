package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"flockscope/internal/server"
)

var shutdownTimeout time.Duration

var serveCommand = &cobra.Command{
	Use:   "serve",
	Short: "Start flockscope http server",
	Run: func(cmd *cobra.Command, args []string) {
		runServe()
	},
}

func init() {
	serveCommand.Flags().DurationVar(&shutdownTimeout, "shutdown-timeout", 5*time.Minute, "How long to wait for running analyses on shutdown")
}

func runServe() {
	conf := loadConfig()
	logrus.Infof("config: %+v", *conf)

	ctx, cancelFunc := context.WithCancel(context.Background())
	defer cancelFunc()

	analyzer, err := newAnalyzer(ctx, conf)
	if err != nil {
		logrus.Fatalf("create analyzer error, %s", err.Error())
	}
	svc, err := newService(conf, analyzer)
	if err != nil {
		logrus.Fatalf("create service error, %s", err.Error())
	}
	defer svc.Close()

	srv, err := server.NewServer(ctx, conf, svc)
	if err != nil {
		logrus.Fatalf("newServer error, %s", err.Error())
	}
	go srv.Start()

	termChan := make(chan os.Signal, 1)
	signal.Notify(termChan, syscall.SIGINT, syscall.SIGTERM)

	<-termChan
	logrus.Infof("server is shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	srv.Shutdown(shutdownCtx)
}
