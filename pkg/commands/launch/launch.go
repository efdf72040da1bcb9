package launch

import (
	"github.com/apex/log"
	clilog "github.com/apex/log/handlers/cli"
	"github.com/urfave/cli/v2"

	"github.com/intelorca/openlauncher/pkg/commands/cmdutil"
	"github.com/intelorca/openlauncher/pkg/common"
)

func Execute(c *cli.Context) error {
	log.SetHandler(clilog.Default)

	l, _, err := cmdutil.Launcher(c)
	if err != nil {
		return err
	}

	g, err := l.Game(c.Args().First())
	if err != nil {
		return err
	}

	m := l.Manager(g)
	if err := m.Launch(); err != nil {
		return err
	}

	log.Infof("launched %s from %s", g.Name, m.ExecutablePath())

	return nil
}

func init() {
	cmd := &cli.Command{
		Name:        "launch",
		Usage:       "launch an installed game",
		Description: `start the installed build of a game`,
		Before:      cmdutil.ExactlyOneArg,
		Flags:       common.Flags(),
		Action:      Execute,
		Args:        true,
		ArgsUsage:   " game",
	}

	common.RegisterCommand(cmd)
}
