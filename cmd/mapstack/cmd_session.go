package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var loginCmd = &cobra.Command{
	Use:   "login <email>",
	Short: "Log in to the backend and persist the session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := boot()
		if err != nil {
			return err
		}
		defer app.shutdown()

		password, err := readSecret("Password: ")
		if err != nil {
			return err
		}

		if err := app.sessions.Login(args[0], password); err != nil {
			return err
		}

		app.initialFetch()
		fmt.Printf("Logged in. %d products, %d tickets loaded.\n",
			len(app.store.Products()), len(app.store.Tickets()))
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Clear the persisted session and local state",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := boot()
		if err != nil {
			return err
		}
		defer app.shutdown()

		app.sessions.Logout()
		fmt.Println("Logged out.")
		return nil
	},
}
