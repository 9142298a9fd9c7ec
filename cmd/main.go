// cmd/main.go

package main

import (
	"os"

	"github.com/google/gops/agent"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"AveBody/pkg/utils"
	"AveBody/pkg/version"
)

var logger = utils.GetLogger("avebody")

func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"debug", "v"},
			Usage:   "enable debug log",
		},
		&cli.BoolFlag{
			Name:    "quiet",
			Aliases: []string{"q"},
			Usage:   "only warning and errors",
		},
		&cli.BoolFlag{
			Name:  "trace",
			Usage: "enable trace log",
		},
		&cli.StringFlag{
			Name:  "log",
			Usage: "path of log file, stderr when empty",
		},
		&cli.BoolFlag{
			Name:  "no-agent",
			Usage: "disable the gops diagnostics agent",
		},
	}
}

func setLoggerLevel(c *cli.Context) {
	switch {
	case c.Bool("trace"):
		utils.SetLogLevel(logrus.TraceLevel)
	case c.Bool("verbose"):
		utils.SetLogLevel(logrus.DebugLevel)
	case c.Bool("quiet"):
		utils.SetLogLevel(logrus.WarnLevel)
	default:
		utils.SetLogLevel(logrus.InfoLevel)
	}
	if name := c.String("log"); name != "" {
		if err := utils.SetOutFile(name); err != nil {
			logger.Warnf("open log file %s: %s", name, err)
		}
	}
}

func setup(c *cli.Context) error {
	setLoggerLevel(c)
	if !c.Bool("no-agent") {
		if err := agent.Listen(agent.Options{}); err != nil {
			logger.Debugf("start gops agent: %s", err)
		}
	}
	return nil
}

func main() {
	cli.VersionFlag = &cli.BoolFlag{
		Name: "version", Aliases: []string{"V"},
		Usage: "print only the version",
	}
	app := &cli.App{
		Name:                 "avebody",
		Usage:                "reconcile and rewrite proxy HTTP bodies",
		Version:              version.Version(),
		EnableBashCompletion: true,
		Flags:                globalFlags(),
		Before:               setup,
		After: func(c *cli.Context) error {
			agent.Close()
			return nil
		},
		Commands: []*cli.Command{
			replayFlags(),
			statusFlags(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		logger.Fatal(err)
	}
}
