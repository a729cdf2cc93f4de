package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"hireloop/internal/client"
	"hireloop/internal/pickstore"
)

func (a *app) projectShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show one project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			p, err := a.api.Project(cmd.Context(), id)
			if err != nil {
				return apiFailure(err)
			}
			picked, err := a.picks.Has(pickstore.KeyProjects, projectID(*p))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "#%d %s [%s]\n", p.ID, p.Title, p.Status)
			if p.Client != nil {
				fmt.Fprintf(out, "Client:   %s\n", p.Client.Name)
			}
			fmt.Fprintf(out, "Budget:   $%.0f (%s)\n", p.Budget, p.ProjectType)
			fmt.Fprintf(out, "Category: %s\n", p.Category)
			fmt.Fprintf(out, "Skills:   %s\n", strings.Join(p.Skills, ", "))
			if p.Deadline != "" {
				fmt.Fprintf(out, "Deadline: %s\n", p.Deadline)
			}
			if p.MinimumTier != "" {
				fmt.Fprintf(out, "Tier:     %s or above\n", p.MinimumTier)
			}
			fmt.Fprintf(out, "Applications: %d\n", p.ApplicationCount)
			if picked {
				fmt.Fprintln(out, "Picked.")
			}
			fmt.Fprintf(out, "\n%s\n", p.Description)
			return nil
		},
	}
}

func (a *app) projectCreateCmd() *cobra.Command {
	var in client.NewProject
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Post a new project (clients)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.api.CreateProject(cmd.Context(), in)
			if err != nil {
				return apiFailure(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created project %d: %s\n", p.ID, p.Title)
			return nil
		},
	}
	cmd.Flags().StringVar(&in.Title, "title", "", "title")
	cmd.Flags().StringVar(&in.Description, "description", "", "description")
	cmd.Flags().Float64Var(&in.Budget, "budget", 0, "budget")
	cmd.Flags().StringVar(&in.Deadline, "deadline", "", "deadline (YYYY-MM-DD)")
	cmd.Flags().StringVar(&in.Category, "category", "", "category")
	cmd.Flags().StringSliceVar(&in.Skills, "skills", nil, "required skills, comma-separated")
	cmd.Flags().StringVar(&in.ProjectType, "type", "fixed", "fixed or hourly")
	cmd.Flags().StringVar(&in.MinimumTier, "min-tier", "", "bronze, silver or gold")
	return cmd
}

func (a *app) projectStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status ID in_progress|completed|closed",
		Short: "Move one of your projects along its lifecycle",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			p, err := a.api.SetProjectStatus(cmd.Context(), id, args[1])
			if err != nil {
				return apiFailure(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Project %d is now %s.\n", p.ID, p.Status)
			return nil
		},
	}
}

func (a *app) applicationStatusCmd(verb, status string) *cobra.Command {
	return &cobra.Command{
		Use:   verb + " ID",
		Short: strings.ToUpper(verb[:1]) + verb[1:] + " an application to your project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			ap, err := a.api.UpdateApplication(cmd.Context(), id, status, nil)
			if err != nil {
				return apiFailure(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Application %d %s.\n", ap.ID, ap.Status)
			return nil
		},
	}
}

func (a *app) applicationPickCmd() *cobra.Command {
	var unpick bool
	cmd := &cobra.Command{
		Use:   "pick ID",
		Short: "Flag an application as picked (or clear it with --unpick)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			picked := !unpick
			ap, err := a.api.UpdateApplication(cmd.Context(), id, "", &picked)
			if err != nil {
				return apiFailure(err)
			}
			if ap.IsPicked {
				fmt.Fprintf(cmd.OutOrStdout(), "Application %d picked.\n", ap.ID)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Application %d unpicked.\n", ap.ID)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&unpick, "unpick", false, "clear the picked flag")
	return cmd
}
