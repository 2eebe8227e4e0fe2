package color

import (
	"fmt"

	"github.com/fatih/color"
)

var (
	red    = color.New(color.FgRed)
	yellow = color.New(color.FgYellow)
	green  = color.New(color.FgGreen)
	cyan   = color.New(color.FgCyan)
	purple = color.New(color.FgMagenta)
)

func Red(args ...interface{}) string {
	return red.Sprint(message(args...))
}

func Yellow(args ...interface{}) string {
	return yellow.Sprint(message(args...))
}

func Green(args ...interface{}) string {
	return green.Sprint(message(args...))
}

func Info(args ...interface{}) string {
	return cyan.Sprint(message(args...))
}

func Purple(args ...interface{}) string {
	return purple.Sprint(message(args...))
}

// message treats a leading string argument as a format when more
// arguments follow, so Yellow("corpus %s", name) works like Sprintf.
func message(args ...interface{}) string {
	if len(args) == 0 {
		return ""
	}
	if format, ok := args[0].(string); ok && len(args) > 1 {
		return fmt.Sprintf(format, args[1:]...)
	}
	return fmt.Sprint(args...)
}
