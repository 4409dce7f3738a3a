package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli"
)

var (
	configPath string
	channelID  string
	message    string
)

var globalFlags = []cli.Flag{
	cli.StringFlag{
		Name:        "config, c",
		Usage:       "path to config.yml (defaults to configs/config.yml when present)",
		EnvVar:      "EGGTIMER_CONFIG",
		Destination: &configPath,
	},
}

var notifyFlags = []cli.Flag{
	cli.StringFlag{
		Name:        "channel",
		Usage:       "notification channel id",
		Value:       "egg",
		Destination: &channelID,
	},
	cli.StringFlag{
		Name:        "message, m",
		Usage:       "notification text",
		Destination: &message,
	},
}

func main() {
	app := cli.App{
		Name:      "eggtimer",
		HelpName:  "eggtimer",
		Usage:     "Egg timer service with durable alarms and notifications.",
		Version:   "v0.1.0",
		UsageText: "eggtimer [global options] <command> [arguments...]",
		Flags:     globalFlags,
		Action:    serve,
		Commands: []cli.Command{
			{
				Name:    "serve",
				Aliases: []string{"s"},
				Usage:   "runs the HTTP/WebSocket API (default)",
				Action:  serve,
			},
			{
				Name:   "notify",
				Usage:  "shows one desktop notification and exits",
				Flags:  notifyFlags,
				Action: notifyOnce,
				Description: `Shows a notification on a configured channel without
starting the service. Useful to check that desktop
notifications work on this machine.

Example:
        eggtimer notify -m "Time's up! Your eggs are ready."
`,
			},
			{
				Name:   "options",
				Usage:  "lists the selectable timer durations",
				Action: listOptions,
			},
			{
				Name:   "wakeups",
				Usage:  "lists pending wake-up registrations in the database",
				Action: listWakeups,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "eggtimer:", err)
		os.Exit(1)
	}
}
