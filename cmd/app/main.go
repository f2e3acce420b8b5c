package main

import (
	"flag"
	"net/http"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"infinisweeper/config"
	"infinisweeper/server"
)

func main() {
	configPath := flag.String("config", "", "path to config file (yaml)")
	flag.Parse()

	if err := run(*configPath); err != nil {
		logrus.WithError(err).Fatal("server stopped")
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	log := cfg.Logger()

	// API と static フォルダの中身（html, js, wasm）を同じポートで配信する
	srv := server.NewServer(cfg, log)
	log.WithFields(logrus.Fields{
		"addr":    cfg.Server.Addr,
		"static":  cfg.Server.StaticDir,
		"density": cfg.Game.Density,
	}).Info("server starting")

	if err := http.ListenAndServe(cfg.Server.Addr, srv.Router()); err != nil {
		return errors.Wrap(err, "listen")
	}
	return nil
}
