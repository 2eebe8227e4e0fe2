package client

import (
	"github.com/l2cup/finddoc"
	"github.com/urfave/cli/v2"
)

func NewUpdate(app *finddoc.App) *cli.Command {
	return &cli.Command{
		Name:  "update",
		Usage: "Update directory caches",
		Action: func(c *cli.Context) error {
			report, err := app.Update(c.Context)
			if err != nil {
				return err
			}
			app.PrintReport(report)
			return nil
		},
	}
}
