package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/vedran77/huddle/internal/authstate"
	"github.com/vedran77/huddle/internal/clientapp"
)

func newRegisterCmd(opts *rootOptions) *cobra.Command {
	var password string
	cmd := &cobra.Command{
		Use:   "register <email>",
		Short: "Create an account and sign in",
		Args:  cobra.ExactArgs(1),
		RunE: opts.withApp(func(cmd *cobra.Command, args []string, app *clientapp.App) error {
			pw, err := readPassword(cmd, password)
			if err != nil {
				return err
			}
			user, err := app.Session.Register(cmd.Context(), args[0], pw)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "registered %s (%s)\n", user.Email, user.ID)
			return nil
		}),
	}
	cmd.Flags().StringVarP(&password, "password", "p", "", "Password (read from stdin when empty)")
	return cmd
}

func newLoginCmd(opts *rootOptions) *cobra.Command {
	var password string
	cmd := &cobra.Command{
		Use:   "login <email>",
		Short: "Sign in with email and password",
		Args:  cobra.ExactArgs(1),
		RunE: opts.withApp(func(cmd *cobra.Command, args []string, app *clientapp.App) error {
			pw, err := readPassword(cmd, password)
			if err != nil {
				return err
			}
			user, err := app.Session.Login(cmd.Context(), args[0], pw)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "logged in as %s\n", user.Email)
			return nil
		}),
	}
	cmd.Flags().StringVarP(&password, "password", "p", "", "Password (read from stdin when empty)")
	return cmd
}

func newLogoutCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the stored session",
		Args:  cobra.NoArgs,
		RunE: opts.withApp(func(cmd *cobra.Command, args []string, app *clientapp.App) error {
			app.Session.Logout(cmd.Context())
			fmt.Fprintln(cmd.OutOrStdout(), "logged out")
			return nil
		}),
	}
}

func newWhoamiCmd(opts *rootOptions) *cobra.Command {
	var wait time.Duration
	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged in user",
		Args:  cobra.NoArgs,
		RunE: opts.withApp(func(cmd *cobra.Command, args []string, app *clientapp.App) error {
			st := awaitProfile(cmd.Context(), app.Session, wait)
			if !st.LoggedIn() {
				fmt.Fprintln(cmd.OutOrStdout(), "not logged in")
				return nil
			}
			printState(cmd, st)
			return nil
		}),
	}
	cmd.Flags().DurationVarP(&wait, "wait", "w", 2*time.Second, "How long to wait for the profile fields")
	return cmd
}

// awaitProfile returns the session state once the background profile load
// has filled in the extended fields, or whatever is known when wait runs out.
func awaitProfile(ctx context.Context, session *authstate.Broadcaster, wait time.Duration) authstate.State {
	states := make(chan authstate.State, 8)
	unsubscribe := session.Subscribe(func(st authstate.State) {
		select {
		case states <- st:
		default:
		}
	})
	defer unsubscribe()

	// Subscribe delivers the current state before returning.
	st := <-states
	if !st.LoggedIn() || hasProfile(st) {
		return st
	}

	timer := time.NewTimer(wait)
	defer timer.Stop()
	for {
		select {
		case st = <-states:
			if !st.LoggedIn() || hasProfile(st) {
				return st
			}
		case <-timer.C:
			return st
		case <-ctx.Done():
			return st
		}
	}
}

func hasProfile(st authstate.State) bool {
	return st.DisplayName != nil || st.Bio != nil || st.Career != nil
}

func printState(cmd *cobra.Command, st authstate.State) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "id:      %s\n", st.ID)
	fmt.Fprintf(out, "email:   %s\n", st.Email)
	fmt.Fprintf(out, "name:    %s\n", orDash(st.DisplayName))
	fmt.Fprintf(out, "bio:     %s\n", orDash(st.Bio))
	fmt.Fprintf(out, "career:  %s\n", orDash(st.Career))
}

func orDash(s *string) string {
	if s == nil || *s == "" {
		return "-"
	}
	return *s
}

func readPassword(cmd *cobra.Command, flag string) (string, error) {
	if flag != "" {
		return flag, nil
	}
	fmt.Fprint(cmd.ErrOrStderr(), "password: ")
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		if err != nil {
			return "", fmt.Errorf("reading password: %w", err)
		}
		return "", errors.New("password is required")
	}
	return line, nil
}
