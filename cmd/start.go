package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/cpacia/dashlink/core"
	"github.com/cpacia/dashlink/devicelink"
	"github.com/cpacia/dashlink/repo"
	"github.com/cpacia/dashlink/version"
	"github.com/fatih/color"
	"github.com/op/go-logging"
)

var log = logging.MustGetLogger("CMD")

// Start is the main entry point for dashlink. The options to this command
// are the same as the dashlink config options.
type Start struct {
	repo.Config
}

// Execute starts the node.
func (x *Start) Execute(args []string) error {
	cfg, _, err := repo.LoadConfig()
	if err != nil {
		return err
	}

	n, err := core.NewNode(context.Background(), cfg)
	if err != nil {
		return err
	}
	printSplashScreen()
	n.Start()

	scheme := "http"
	if cfg.UseSSL {
		scheme = "https"
	}
	log.Infof("Dashboard API at %s://%s/v1/", scheme, cfg.GatewayAddr)
	log.Infof("Device transport endpoint at ws://%s%s", cfg.GatewayAddr, devicelink.Path)

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c
	log.Info("dashlink shutting down...")
	n.Stop()
	return nil
}

func printSplashScreen() {
	blue := color.New(color.FgBlue)
	white := color.New(color.FgWhite)

	for i, l := range []string{
		`    ___           _     `,
		` __ _       _    `,
		`   /   \__ _ ___| |__  `,
		`/ /(_)_ __ | | __`,
		`  / /\ / _' / __| '_ \ `,
		`/ / | | '_ \| |/ /`,
		` / /_// (_| \__ \ | | |`,
		`/ /__| | | | |   < `,
		`/___,' \__,_|___/_| |_|`,
		`\____/_|_| |_|_|\_\`,
	} {
		if i%2 == 0 {
			if _, err := white.Print(l); err != nil {
				log.Debug(err)
				return
			}
			continue
		}
		if _, err := blue.Println(l); err != nil {
			log.Debug(err)
			return
		}
	}

	blue.DisableColor()
	white.DisableColor()
	fmt.Println("")
	fmt.Printf("\ndashlink v%s\n", version.String())
}
