package cmdutil

import (
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/intelorca/openlauncher/pkg/common"
	"github.com/intelorca/openlauncher/pkg/config"
	"github.com/intelorca/openlauncher/pkg/launcher"
)

// Flags are the flags shared by every command that talks to a release source
func Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "github-token",
			Usage:    "GitHub token to use for GitHub API requests",
			EnvVars:  []string{"OPENLAUNCHER_GITHUB_TOKEN"},
			Category: "Authentication",
		},
		&cli.StringFlag{
			Name:     "gitlab-token",
			Usage:    "GitLab token to use for GitLab API requests",
			EnvVars:  []string{"OPENLAUNCHER_GITLAB_TOKEN"},
			Category: "Authentication",
		},
	}
}

// Config loads the configuration file, letting token flags override the file
func Config(c *cli.Context) (*config.Config, error) {
	cfg, err := config.New(c.String("config"))
	if err != nil {
		return nil, err
	}

	if v := c.String("github-token"); v != "" {
		cfg.GitHubToken = v
	}
	if v := c.String("gitlab-token"); v != "" {
		cfg.GitLabToken = v
	}

	return cfg, nil
}

// Launcher builds a launcher from the configuration, creating its directories
func Launcher(c *cli.Context, opts ...launcher.Option) (*launcher.Launcher, *config.Config, error) {
	cfg, err := Config(c)
	if err != nil {
		return nil, nil, err
	}

	if err := cfg.MkdirAll(); err != nil {
		return nil, nil, err
	}

	l, err := launcher.New(cfg, opts...)
	if err != nil {
		return nil, nil, err
	}

	return l, cfg, nil
}

// ParseTarget splits game[@version] into its parts, the version defaults to latest
func ParseTarget(arg string) (name, version string, err error) {
	parts := strings.Split(arg, "@")
	switch {
	case len(parts) == 1 && parts[0] != "":
		return parts[0], common.Latest, nil
	case len(parts) == 2 && parts[0] != "" && parts[1] != "":
		return parts[0], parts[1], nil
	}

	return "", "", fmt.Errorf("invalid game specified: %q", arg)
}

// ExactlyOneArg is a Before hook for commands taking a single game
func ExactlyOneArg(c *cli.Context) error {
	if c.NArg() == 0 {
		return fmt.Errorf("no game specified")
	}

	if c.NArg() > 1 {
		return fmt.Errorf("only one game can be specified")
	}

	return common.Before(c)
}
