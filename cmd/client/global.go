package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/vedran77/huddle/internal/clientapp"
	"github.com/vedran77/huddle/internal/domain"
)

func newGlobalCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "global",
		Short: "Read and write the global chat",
	}
	cmd.AddCommand(newGlobalSendCmd(opts), newGlobalHistoryCmd(opts), newGlobalWatchCmd(opts))
	return cmd
}

func newGlobalSendCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "send <message...>",
		Short: "Post a message to everyone",
		Args:  cobra.MinimumNArgs(1),
		RunE: opts.withApp(func(cmd *cobra.Command, args []string, app *clientapp.App) error {
			msg, err := app.Global.Send(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			printGlobal(cmd.OutOrStdout(), *msg)
			return nil
		}),
	}
}

func newGlobalHistoryCmd(opts *rootOptions) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show the latest global messages",
		Args:  cobra.NoArgs,
		RunE: opts.withApp(func(cmd *cobra.Command, args []string, app *clientapp.App) error {
			if limit <= 0 {
				limit = app.HistoryLimit()
			}
			msgs, err := app.Global.LastMessages(cmd.Context(), limit)
			if err != nil {
				return err
			}
			for _, msg := range msgs {
				printGlobal(cmd.OutOrStdout(), msg)
			}
			return nil
		}),
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Number of messages (default from config)")
	return cmd
}

func newGlobalWatchCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Print new global messages until interrupted",
		Args:  cobra.NoArgs,
		RunE: opts.withApp(func(cmd *cobra.Command, args []string, app *clientapp.App) error {
			out := cmd.OutOrStdout()
			cancel, err := app.Global.SubscribeNew(cmd.Context(), func(msg domain.GlobalMessage) {
				printGlobal(out, msg)
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

func printGlobal(w io.Writer, msg domain.GlobalMessage) {
	fmt.Fprintf(w, "[%s] %s: %s\n", msg.CreatedAt.Local().Format("15:04"), msg.Email, msg.Body)
}
