package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/vedran77/huddle/internal/clientapp"
	"github.com/vedran77/huddle/internal/domain"
)

func newPrivateCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "private",
		Short: "Private chats with another user",
	}
	cmd.AddCommand(newPrivateSendCmd(opts), newPrivateHistoryCmd(opts), newPrivateWatchCmd(opts))
	return cmd
}

// peer returns the logged in user and the user named by arg.
func peer(app *clientapp.App, arg string) (me, other uuid.UUID, err error) {
	me, err = app.Me()
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	other, err = uuid.Parse(arg)
	if err != nil {
		return uuid.Nil, uuid.Nil, fmt.Errorf("invalid user id %q", arg)
	}
	return me, other, nil
}

func newPrivateSendCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "send <user-id> <message...>",
		Short: "Send a private message",
		Args:  cobra.MinimumNArgs(2),
		RunE: opts.withApp(func(cmd *cobra.Command, args []string, app *clientapp.App) error {
			me, other, err := peer(app, args[0])
			if err != nil {
				return err
			}
			msg, err := app.Private.Send(cmd.Context(), me, other, strings.Join(args[1:], " "))
			if err != nil {
				return err
			}
			printPrivate(cmd.OutOrStdout(), me, *msg)
			return nil
		}),
	}
}

func newPrivateHistoryCmd(opts *rootOptions) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history <user-id>",
		Short: "Show the latest messages with a user",
		Args:  cobra.ExactArgs(1),
		RunE: opts.withApp(func(cmd *cobra.Command, args []string, app *clientapp.App) error {
			me, other, err := peer(app, args[0])
			if err != nil {
				return err
			}
			if limit <= 0 {
				limit = app.HistoryLimit()
			}
			msgs, err := app.Private.LastMessages(cmd.Context(), me, other, limit)
			if err != nil {
				return err
			}
			for _, msg := range msgs {
				printPrivate(cmd.OutOrStdout(), me, msg)
			}
			return nil
		}),
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Number of messages (default from config)")
	return cmd
}

func newPrivateWatchCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "watch <user-id>",
		Short: "Print new messages with a user until interrupted",
		Args:  cobra.ExactArgs(1),
		RunE: opts.withApp(func(cmd *cobra.Command, args []string, app *clientapp.App) error {
			me, other, err := peer(app, args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			cancel, err := app.Private.SubscribeNew(cmd.Context(), me, other, func(msg domain.PrivateMessage) {
				printPrivate(out, me, msg)
			})
			if err != nil {
				return err
			}
			defer cancel()

			<-cmd.Context().Done()
			return nil
		}),
	}
}

func printPrivate(w io.Writer, me uuid.UUID, msg domain.PrivateMessage) {
	from := msg.SenderID.String()
	if msg.SenderID == me {
		from = "me"
	}
	fmt.Fprintf(w, "[%s] %s: %s\n", msg.CreatedAt.Local().Format("15:04"), from, msg.Body)
}
