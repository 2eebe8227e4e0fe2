package client

import (
	"github.com/l2cup/finddoc"
	"github.com/urfave/cli/v2"
)

func NewList(app *finddoc.App) *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List included directories",
		Action: func(c *cli.Context) error {
			app.List()
			return nil
		},
	}
}

func NewAdd(app *finddoc.App) *cli.Command {
	return &cli.Command{
		Name:      "add",
		Usage:     "Add path to search tree",
		ArgsUsage: "<path>",
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return cli.ShowCommandHelp(c, "add")
			}
			return app.Add(c.Args().First())
		},
	}
}

func NewRemove(app *finddoc.App) *cli.Command {
	return &cli.Command{
		Name:      "remove",
		Usage:     "Remove path from search",
		ArgsUsage: "<path>",
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return cli.ShowCommandHelp(c, "remove")
			}
			return app.Remove(c.Args().First())
		},
	}
}
