package main

import (
	"os"
	"path"

	"github.com/apex/log"
	"github.com/rancher/wrangler/pkg/signals"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/intelorca/openlauncher/pkg/common"

	_ "github.com/intelorca/openlauncher/pkg/commands/builds"
	_ "github.com/intelorca/openlauncher/pkg/commands/games"
	_ "github.com/intelorca/openlauncher/pkg/commands/info"
	_ "github.com/intelorca/openlauncher/pkg/commands/install"
	_ "github.com/intelorca/openlauncher/pkg/commands/launch"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			// log panics forces exit
			if _, ok := r.(*logrus.Entry); ok {
				os.Exit(1)
			}
			panic(r)
		}
	}()

	app := cli.NewApp()
	app.Name = path.Base(os.Args[0])
	app.Usage = `install, update and launch open source game remakes`
	app.Description = `download the builds of OpenRCT2, OpenLoco and friends published on GitHub or GitLab, and launch them`
	app.Version = common.AppVersion.Summary

	app.Before = common.Before
	app.Flags = common.Flags()

	app.Commands = common.GetCommands()
	app.CommandNotFound = func(context *cli.Context, command string) {
		log.Fatalf("command %s not found.", command)
	}

	ctx := signals.SetupSignalContext()
	if err := app.RunContext(ctx, os.Args); err != nil {
		log.Error(err.Error())
		os.Exit(1)
	}
}
