package main

import (
	"io"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/mapwarden/vtt/internal/vtt"
)

func main() {
	cfg := vtt.LoadConfig("vtt.yaml")

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	log.SetOutput(io.MultiWriter(os.Stderr, &lumberjack.Logger{
		Filename:   cfg.LogFile,
		MaxSize:    10, // MB
		MaxBackups: 3,
	}))

	ebiten.SetWindowTitle("Map Warden")
	ebiten.SetWindowSize(cfg.WindowWidth, cfg.WindowHeight)

	log.WithFields(logrus.Fields{
		"maps":   cfg.MapsDir,
		"tokens": cfg.TokensDir,
		"saves":  cfg.SavesDir,
	}).Info("starting")

	if err := ebiten.RunGame(vtt.NewGame(cfg, log)); err != nil {
		log.Fatal(err)
	}
}
