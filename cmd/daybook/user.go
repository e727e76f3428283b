package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/unowned-ai/daybook/pkg/auth"
	"github.com/unowned-ai/daybook/pkg/users"
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage the local account",
	Long:  `Shows and edits the single local account: its display name and the PIN that locks the journal.`,
}

var showUserCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the account",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		u, err := a.users.Get(cmd.Context())
		if errors.Is(err, users.ErrNoUser) {
			fmt.Fprintln(cmd.OutOrStdout(), "No account yet.")
			return nil
		}
		if err != nil {
			return err
		}
		name := u.Username
		if name == "" {
			name = "(none)"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Username: %s\nPIN set:  %t\n", name, u.HasPin())
		return nil
	},
}

var setNameCmd = &cobra.Command{
	Use:   "set-name [name]",
	Short: "Set the display name",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.users.SetUsername(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Username updated.")
		return nil
	},
}

var setPinCmd = &cobra.Command{
	Use:   "set-pin [pin]",
	Short: "Set or change the PIN",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		svc, err := auth.NewService(cmd.Context(), a.users, log)
		if err != nil {
			return err
		}
		if err := svc.SetPin(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "PIN updated.")
		return nil
	},
}

var clearPinCmd = &cobra.Command{
	Use:   "clear-pin",
	Short: "Remove the PIN",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		svc, err := auth.NewService(cmd.Context(), a.users, log)
		if err != nil {
			return err
		}
		if err := svc.ClearPin(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "PIN removed.")
		return nil
	},
}

var loginCmd = &cobra.Command{
	Use:   "login [pin]",
	Short: "Check a PIN against the account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		svc, err := auth.NewService(cmd.Context(), a.users, log)
		if err != nil {
			return err
		}
		id, states := svc.Subscribe()
		defer svc.Unsubscribe(id)

		ok, err := svc.Login(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if !ok {
			return errors.New("incorrect PIN")
		}

		st := svc.State()
	drain:
		for {
			select {
			case st = <-states:
			default:
				break drain
			}
		}
		name := st.Username
		if name == "" {
			name = "(no name)"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s.\n", name)
		return nil
	},
}

func initUserCmd() {
	userCmd.AddCommand(showUserCmd, setNameCmd, setPinCmd, clearPinCmd, loginCmd)
}
