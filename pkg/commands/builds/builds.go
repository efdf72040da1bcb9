package builds

import (
	"fmt"
	"time"

	"github.com/apex/log"
	clilog "github.com/apex/log/handlers/cli"
	"github.com/urfave/cli/v2"

	"github.com/intelorca/openlauncher/pkg/commands/cmdutil"
	"github.com/intelorca/openlauncher/pkg/common"
)

func Execute(c *cli.Context) error {
	log.SetHandler(clilog.Default)

	l, cfg, err := cmdutil.Launcher(c)
	if err != nil {
		return err
	}

	g, err := l.Game(c.Args().First())
	if err != nil {
		return err
	}

	builds, err := l.AvailableBuilds(c.Context, g, c.Bool("prerelease") || cfg.IncludePrerelease)
	if err != nil {
		return err
	}

	if len(builds) == 0 {
		p := l.Platform()
		log.Warnf("no builds of %s are published for %s/%s", g.Name, p.Name, p.Arch)
		return nil
	}

	now := time.Now()
	for _, b := range builds {
		line := b.Version
		if b.PublishedAt != nil {
			line = fmt.Sprintf("%s (released %s)", b.Version, Age(*b.PublishedAt, now))
		}
		if !b.IsRelease {
			line += " [prerelease]"
		}

		a, _ := l.SelectAsset(b)
		log.Infof("%s  %s", line, a.Name)
	}

	return nil
}

func Flags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:  "prerelease",
			Usage: "Include prerelease builds",
		},
	}
}

func init() {
	cmd := &cli.Command{
		Name:        "builds",
		Usage:       "list the builds of a game available for this platform",
		Description: `list the builds of a game, newest first, with the asset that would be installed`,
		Before:      cmdutil.ExactlyOneArg,
		Flags:       append(append(Flags(), cmdutil.Flags()...), common.Flags()...),
		Action:      Execute,
		Args:        true,
		ArgsUsage:   " game",
	}

	common.RegisterCommand(cmd)
}
