package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

var loginCmd = &cobra.Command{
	Use:   "login <email>",
	Short: "Sign in and save the session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(io.Discard)
		if err != nil {
			return err
		}
		defer a.Close()

		password, err := terminalPrompter{}.Password("Password")
		if err != nil {
			return err
		}
		ctx, cancel := signalContext()
		defer cancel()
		if err := a.Gate.Login(ctx, args[0], password); err != nil {
			return err
		}
		u := a.Store.GetState().User
		fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s <%s>\n", u.Name, u.Email)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the saved session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(io.Discard)
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, cancel := signalContext()
		defer cancel()
		a.Gate.Logout(ctx)
		a.Router.Wait()
		fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the backend and the signed-in user",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(io.Discard)
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, cancel := signalContext()
		defer cancel()
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Backend:  %s\n", a.Config.APIURL)
		fmt.Fprintf(out, "Storage:  %s %s\n", a.Config.Storage.Backend, a.Config.Storage.Path)
		if !a.Gate.CheckAuth(ctx) {
			fmt.Fprintln(out, "Session:  not signed in")
			return nil
		}
		u := a.Store.GetState().User
		fmt.Fprintf(out, "Session:  %s <%s>\n", u.Name, u.Email)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(loginCmd, logoutCmd, statusCmd)
}
