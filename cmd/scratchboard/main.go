package main

//go-build: CGO_ENABLED=0

import (
	"context"
	"flag"

	"github.com/golang/glog"

	"github.com/robotalks/nanoboard/pkg/bridge"
	fx "github.com/robotalks/nanoboard/pkg/framework"
)

var configFile string

func init() {
	flag.Set("logtostderr", "true")
	bridge.SetupFlags()
	flag.StringVar(&configFile, "config", configFile, "TOML config file, overrides flags.")
}

func main() {
	flag.Parse()
	defer glog.Flush()

	conf := bridge.NewConfig()
	if configFile != "" {
		if err := conf.LoadFile(configFile); err != nil {
			glog.Exit(err)
		}
	}
	ctx := fx.NewRunner().HandleSignals().Context
	b, err := conf.Open(ctx)
	if err != nil {
		glog.Exit(err)
	}
	glog.Infof("bridging %s and %s", conf.Board.Port, conf.Scratch.URL)
	err = fx.NewLoop().Add(b).Run(ctx)
	if cerr := b.Close(); cerr != nil {
		glog.Warningf("close: %v", cerr)
	}
	if err != nil && err != context.Canceled {
		glog.Exit(err)
	}
}
