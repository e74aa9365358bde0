package main

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func profileCMD() *cobra.Command {
	var projectId string

	var profile = &cobra.Command{
		Use:   "profile",
		Short: "Recompute and print a project profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(projectId)
			if err != nil {
				return fmt.Errorf("invalid --project: %w", err)
			}

			c, err := openContainer()
			if err != nil {
				return err
			}
			defer c.Close()

			ctx := context.Background()
			ownerId, err := projectOwner(ctx, c.UowFactory, id)
			if err != nil {
				return err
			}
			p, err := c.PipelineService.RecomputeProfile(ctx, id, ownerId)
			if err != nil {
				return err
			}

			color.Green("Profile for project %s", id)
			fmt.Fprintln(cmd.OutOrStdout(), p.Profile)
			return nil
		},
	}
	profile.Flags().StringVar(&projectId, "project", "", "project id")
	_ = profile.MarkFlagRequired("project")

	return profile
}
