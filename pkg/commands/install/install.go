package install

import (
	"fmt"
	"os"
	"sync"

	"github.com/apex/log"
	clilog "github.com/apex/log/handlers/cli"
	"github.com/urfave/cli/v2"
	"golang.org/x/term"

	"github.com/intelorca/openlauncher/pkg/commands/cmdutil"
	"github.com/intelorca/openlauncher/pkg/common"
	installer "github.com/intelorca/openlauncher/pkg/install"
	"github.com/intelorca/openlauncher/pkg/launcher"
)

func Execute(c *cli.Context) error {
	log.SetHandler(clilog.Default)

	l, cfg, err := cmdutil.Launcher(c)
	if err != nil {
		return err
	}

	name, version, err := cmdutil.ParseTarget(c.Args().First())
	if err != nil {
		return err
	}

	if alias := cfg.GetAlias(name); alias != nil && version == common.Latest {
		version = alias.Version
	}

	g, err := l.Game(name)
	if err != nil {
		return err
	}

	includePrerelease := c.Bool("prerelease") || cfg.IncludePrerelease

	builds, err := l.AvailableBuilds(c.Context, g, includePrerelease)
	if err != nil {
		return err
	}

	build, err := launcher.FindBuild(builds, version)
	if err != nil {
		return err
	}

	a, _ := l.SelectAsset(build)

	p := l.Platform()
	log.Infof("%s/%s", common.NAME, common.AppVersion.Summary)
	log.Infof("   game: %s", g.Name)
	log.Infof("version: %s", build.Version)
	log.Infof("  asset: %s", a.Name)
	log.Infof("     os: %s", p.Name)
	log.Infof("   arch: %s", p.Arch)

	progress := make(chan installer.Progress, 16)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		render(progress)
	}()

	err = l.Install(c.Context, g, build, progress)
	close(progress)
	wg.Wait()

	if err != nil {
		if installer.IsKind(err, installer.KindCancelled) {
			log.Warnf("installation cancelled, %s was left as it was", g.Name)
		}
		return err
	}

	log.Infof("installation complete: %s", l.Manager(g).ExecutablePath())

	return nil
}

// render redraws a single progress line on terminals and stays quiet otherwise
func render(progress <-chan installer.Progress) {
	interactive := term.IsTerminal(int(os.Stderr.Fd()))

	var last installer.Progress
	for p := range progress {
		last = p
		if !interactive {
			continue
		}

		if f := p.Fraction(); f >= 0 {
			fmt.Fprintf(os.Stderr, "\r  downloading %5.1f%%", f*100)
		} else {
			fmt.Fprintf(os.Stderr, "\r  downloading %d bytes", p.Downloaded)
		}
	}

	if interactive && last.Downloaded > 0 {
		fmt.Fprintln(os.Stderr)
	}
}

func Flags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:  "prerelease",
			Usage: "Consider prerelease builds when picking the latest version",
		},
	}
}

func init() {
	cmd := &cli.Command{
		Name:        "install",
		Usage:       "install",
		Description: fmt.Sprintf(`download and install a build of a game. default location is $HOME/.%s/games`, common.NAME),
		Before:      cmdutil.ExactlyOneArg,
		Flags:       append(append(Flags(), cmdutil.Flags()...), common.Flags()...),
		Action:      Execute,
		Args:        true,
		ArgsUsage:   " game[@version]",
	}

	common.RegisterCommand(cmd)
}
