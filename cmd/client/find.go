package client

import (
	"github.com/l2cup/finddoc"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
)

func NewFind(app *finddoc.App) *cli.Command {
	return &cli.Command{
		Name:   "find",
		Usage:  "Find files (default)",
		Action: FindAction(app),
	}
}

// FindAction is also the action of the bare command.
func FindAction(app *finddoc.App) cli.ActionFunc {
	return func(c *cli.Context) error {
		if c.NArg() > 0 {
			_ = cli.ShowAppHelp(c)
			return errors.Errorf("no matching command '%s'", c.Args().First())
		}
		return app.Find(c.Context)
	}
}

func NewPreview(app *finddoc.App) *cli.Command {
	return &cli.Command{
		Name:      "preview",
		Usage:     "Preview file",
		ArgsUsage: "<file>",
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return cli.ShowCommandHelp(c, "preview")
			}
			return app.Preview(c.Args().First())
		},
	}
}
