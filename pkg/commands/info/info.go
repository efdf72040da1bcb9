package info

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/apex/log"
	clilog "github.com/apex/log/handlers/cli"
	"github.com/urfave/cli/v2"

	"github.com/intelorca/openlauncher/pkg/commands/cmdutil"
	"github.com/intelorca/openlauncher/pkg/common"
	"github.com/intelorca/openlauncher/pkg/osconfig"
)

func Execute(c *cli.Context) error {
	log.SetHandler(clilog.Default)

	cfg, err := cmdutil.Config(c)
	if err != nil {
		return err
	}

	timeout, err := cfg.GetFetchTimeout()
	if err != nil {
		return err
	}

	p := osconfig.New(runtime.GOOS, runtime.GOARCH, osconfig.WithCompat32(cfg.Allow32Bit))

	formats := make([]string, 0, len(p.Formats))
	for _, f := range p.Formats {
		formats = append(formats, string(f))
	}

	log.Infof("%s/%s", common.NAME, common.AppVersion.Summary)
	fmt.Println("")
	log.Infof("system information")
	log.Infof("       os: %s (%s)", p.Name, strings.Join(p.GetOS(), ", "))
	log.Infof("     arch: %s", strings.Join(p.GetArchitectures(), ", "))
	log.Infof("  formats: %s", strings.Join(formats, ", "))
	fmt.Println("")
	log.Infof("configuration")
	log.Infof("     home: %s", cfg.Path)
	log.Infof("  install: %s", cfg.InstallPath)
	log.Infof("    cache: %s", cfg.GetCachePath())
	log.Infof("  timeout: %s", timeout)
	log.Infof("   github: %s", tokenState(cfg.GitHubToken))
	log.Infof("   gitlab: %s", tokenState(cfg.GitLabToken))
	fmt.Println("")
	log.Warnf("To cleanup all of %s, remove the following directories:", common.NAME)
	log.Warnf("  - %s", cfg.GetCachePath())
	log.Warnf("  - %s", cfg.Path)

	return nil
}

func tokenState(token string) string {
	if token == "" {
		return "anonymous"
	}
	return "token set"
}

func init() {
	cmd := &cli.Command{
		Name:        "info",
		Usage:       "info",
		Description: `general information about the platform and the rendered configuration`,
		Before:      common.Before,
		Flags:       append(cmdutil.Flags(), common.Flags()...),
		Action:      Execute,
	}

	common.RegisterCommand(cmd)
}
