package main

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/vedran77/huddle/internal/authstate"
	"github.com/vedran77/huddle/internal/clientapp"
	"github.com/vedran77/huddle/internal/domain"
)

func newProfileCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show and edit profiles",
	}
	cmd.AddCommand(newProfileShowCmd(opts), newProfileUpdateCmd(opts))
	return cmd
}

func newProfileShowCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <user-id>",
		Short: "Show another user's profile",
		Args:  cobra.ExactArgs(1),
		RunE: opts.withApp(func(cmd *cobra.Command, args []string, app *clientapp.App) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid user id %q", args[0])
			}
			return showProfile(cmd, app, id)
		}),
	}
}

func showProfile(cmd *cobra.Command, app *clientapp.App, id uuid.UUID) error {
	profile, err := app.Profile(cmd.Context(), id)
	if err != nil {
		return err
	}
	printState(cmd, authstate.State{
		ID:          profile.ID,
		Email:       profile.Email,
		DisplayName: profile.DisplayName,
		Bio:         profile.Bio,
		Career:      profile.Career,
	})
	return nil
}

func newProfileUpdateCmd(opts *rootOptions) *cobra.Command {
	var name, bio, career string
	cmd := &cobra.Command{
		Use:   "update",
		Short: "Change your display name, bio or career",
		Args:  cobra.NoArgs,
		RunE: opts.withApp(func(cmd *cobra.Command, args []string, app *clientapp.App) error {
			var patch domain.ProfilePatch
			if cmd.Flags().Changed("name") {
				patch.DisplayName = &name
			}
			if cmd.Flags().Changed("bio") {
				patch.Bio = &bio
			}
			if cmd.Flags().Changed("career") {
				patch.Career = &career
			}
			if patch.IsEmpty() {
				return errors.New("nothing to update, pass --name, --bio or --career")
			}
			if err := app.Session.UpdateProfile(cmd.Context(), patch); err != nil {
				return err
			}
			me, err := app.Me()
			if err != nil {
				return err
			}
			return showProfile(cmd, app, me)
		}),
	}
	cmd.Flags().StringVar(&name, "name", "", "Display name")
	cmd.Flags().StringVar(&bio, "bio", "", "Short bio")
	cmd.Flags().StringVar(&career, "career", "", "Career")
	return cmd
}
