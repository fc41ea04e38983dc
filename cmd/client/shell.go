package main

import (
	"errors"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/harrylevesque/emailforms/internal/app"
	"github.com/harrylevesque/emailforms/internal/ui"
)

var shellCmd = &cobra.Command{
	Use:   "shell [path]",
	Short: "Start the interactive client",
	Long: `Opens the client at path (default /). Type "help" for the commands of
the current page, "go /forms" to switch pages and "quit" to leave.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.OutOrStdout())
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, cancel := signalContext()
		defer cancel()

		path := ""
		if len(args) == 1 {
			path = args[0]
		}
		a.Start(ctx, path)

		for {
			line, err := (&promptui.Prompt{Label: a.Router.Path()}).Run()
			if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
				return nil
			}
			if err != nil {
				return err
			}
			err = a.Exec(ctx, line)
			if errors.Is(err, app.ErrQuit) {
				return nil
			}
			if err != nil {
				a.Terminal.Notify(ui.LevelError, err.Error())
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(shellCmd)
}
