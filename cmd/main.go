package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/l2cup/finddoc"
	"github.com/l2cup/finddoc/cmd/client"
	"github.com/l2cup/finddoc/pkg/color"
	"github.com/l2cup/finddoc/pkg/config"
	"github.com/urfave/cli/v2"
)

func main() {
	app := finddoc.New()
	cmd := createCmd(app)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := cmd.RunContext(ctx, os.Args)
	stop()
	app.Close()

	if err != nil {
		fmt.Fprintln(os.Stderr, color.Red(err.Error()))
		os.Exit(1)
	}
}

func createCmd(app *finddoc.App) *cli.App {
	cmd := cli.NewApp()

	cmd.Name = "finddoc"
	cmd.Usage = "fuzzy find files in many directory trees with fzf"
	cmd.Description = "Roots are listed in the config file and their file lists are cached, run update to refresh them."
	cmd.UsageText = "finddoc [global options] [command] [arguments...]"
	cmd.Authors = append(cmd.Authors, &cli.Author{Name: "l2cup", Email: "nikolic.uros@me.com"})

	cmd.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Usage:   "path to config file",
			Value:   config.DefaultConfigPath(),
			EnvVars: []string{config.EnvConfigPath},
		},
		&cli.BoolFlag{
			Name:  "preview",
			Usage: "show a preview pane in fzf",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "log debug output to stderr",
		},
	}

	cmd.Before = func(c *cli.Context) error {
		if err := app.Load(finddoc.Options{
			ConfigPath: c.String("config"),
			Preview:    c.Bool("preview"),
			Verbose:    c.Bool("verbose"),
		}); err != nil {
			return err
		}
		app.Start()
		return nil
	}

	cmd.Action = client.FindAction(app)
	cmd.Commands = []*cli.Command{
		client.NewFind(app),
		client.NewUpdate(app),
		client.NewList(app),
		client.NewAdd(app),
		client.NewRemove(app),
		client.NewPreview(app),
	}

	return cmd
}
