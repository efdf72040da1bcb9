package games

import (
	"github.com/apex/log"
	clilog "github.com/apex/log/handlers/cli"
	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/intelorca/openlauncher/pkg/commands/cmdutil"
	"github.com/intelorca/openlauncher/pkg/common"
	"github.com/intelorca/openlauncher/pkg/install"
)

const unknownVersion = "(unknown)"

// InstalledVersion is what the games listing shows for an install slot, empty when nothing can run
func InstalledVersion(m *install.Manager) string {
	if version, ok := m.CurrentVersion(); ok {
		return version
	}

	if m.CanLaunch() {
		return unknownVersion
	}

	return ""
}

func Execute(c *cli.Context) error {
	log.SetHandler(clilog.Default)

	l, _, err := cmdutil.Launcher(c)
	if err != nil {
		return err
	}

	installed := color.New(color.FgGreen).SprintFunc()
	missing := color.New(color.Faint).SprintFunc()

	for _, g := range l.Games() {
		m := l.Manager(g)

		version := InstalledVersion(m)
		if version == "" {
			log.Infof("%-10s %s", g.ID, missing("not installed"))
			continue
		}

		log.Infof("%-10s %s  %s", g.ID, installed(version), m.ExecutablePath())
	}

	return nil
}

func init() {
	cmd := &cli.Command{
		Name:        "games",
		Usage:       "list known games and their installed versions",
		Description: `list known games and their installed versions`,
		Before:      common.Before,
		Flags:       common.Flags(),
		Action:      Execute,
	}

	common.RegisterCommand(cmd)
}
