package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"hireloop/internal/filter"
	"hireloop/internal/models"
	"hireloop/internal/pickstore"
)

type filterFlags struct {
	search   string
	category string
	skills   []string
	picked   bool
}

func (f *filterFlags) register(cmd *cobra.Command, pickable, categorized bool) {
	cmd.Flags().StringVar(&f.search, "search", "", "case-insensitive text search")
	if categorized {
		cmd.Flags().StringVar(&f.category, "category", "", `category, or "all"`)
	}
	cmd.Flags().StringSliceVar(&f.skills, "skills", nil, "required skills, comma-separated")
	if pickable {
		cmd.Flags().BoolVar(&f.picked, "picked", false, "only show picked entries")
	}
}

func (f *filterFlags) query() filter.Query {
	return filter.Query{Search: f.search, Category: f.category, Skills: f.skills}
}

func projectID(p models.Project) string      { return idString(p.ID) }
func talentID(t models.TalentProfile) string { return idString(t.UserID) }
func agencyID(a models.AgencyProfile) string { return idString(a.UserID) }

func (a *app) projectsCmd() *cobra.Command {
	var f filterFlags
	var status string
	var mine bool
	cmd := &cobra.Command{
		Use:   "projects",
		Short: "List projects (open by default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			q := f.query()
			projects, err := a.api.Projects(cmd.Context(), status, mine, q)
			if err != nil {
				return apiFailure(err)
			}
			projects = filter.Apply(projects, q)
			if f.picked {
				ids, err := a.picks.List(pickstore.KeyProjects)
				if err != nil {
					return err
				}
				projects = pickstore.Select(projects, ids, projectID)
			}
			return a.printProjects(cmd, projects)
		},
	}
	f.register(cmd, true, true)
	cmd.Flags().StringVar(&status, "status", "", `status filter (open, in_progress, completed, closed, all)`)
	cmd.Flags().BoolVar(&mine, "mine", false, "only my projects (clients)")
	cmd.AddCommand(a.projectShowCmd(), a.projectCreateCmd(), a.projectStatusCmd())
	return cmd
}

func (a *app) printProjects(cmd *cobra.Command, projects []models.Project) error {
	out := cmd.OutOrStdout()
	if len(projects) == 0 {
		fmt.Fprintln(out, "No projects match your filters.")
		return nil
	}
	picked, err := a.picks.List(pickstore.KeyProjects)
	if err != nil {
		return err
	}
	tw := table(out)
	fmt.Fprintln(tw, "ID\tTITLE\tBUDGET\tTYPE\tCATEGORY\tSTATUS\tSKILLS\t")
	for _, p := range projects {
		mark := ""
		if contains(picked, projectID(p)) {
			mark = "*"
		}
		fmt.Fprintf(tw, "%d%s\t%s\t$%.0f\t%s\t%s\t%s\t%s\t\n",
			p.ID, mark, p.Title, p.Budget, p.ProjectType, p.Category, p.Status, strings.Join(p.Skills, ","))
	}
	return tw.Flush()
}

func (a *app) talentsCmd() *cobra.Command {
	var f filterFlags
	cmd := &cobra.Command{
		Use:   "talents",
		Short: "List talent profiles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			q := f.query()
			talents, err := a.api.Talents(cmd.Context(), q)
			if err != nil {
				return apiFailure(err)
			}
			talents = filter.Apply(talents, q)
			if f.picked {
				ids, err := a.picks.List(pickstore.KeyDevelopers)
				if err != nil {
					return err
				}
				talents = pickstore.Select(talents, ids, talentID)
			}
			out := cmd.OutOrStdout()
			if len(talents) == 0 {
				fmt.Fprintln(out, "No talent matches your filters.")
				return nil
			}
			tw := table(out)
			fmt.Fprintln(tw, "ID\tNAME\tTITLE\tRATE\tTIER\tSKILLS\t")
			for _, t := range talents {
				fmt.Fprintf(tw, "%d\t%s\t%s\t$%.0f/h\t%s\t%s\t\n",
					t.UserID, t.Name, t.Title, t.HourlyRate, tierName(t.Tier), strings.Join(t.Skills, ","))
			}
			return tw.Flush()
		},
	}
	f.register(cmd, true, true)
	return cmd
}

func (a *app) agenciesCmd() *cobra.Command {
	var f filterFlags
	cmd := &cobra.Command{
		Use:   "agencies",
		Short: "List agency profiles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			q := f.query()
			agencies, err := a.api.Agencies(cmd.Context(), q)
			if err != nil {
				return apiFailure(err)
			}
			agencies = filter.Apply(agencies, q)
			if f.picked {
				ids, err := a.picks.List(pickstore.KeyDevelopers)
				if err != nil {
					return err
				}
				agencies = pickstore.Select(agencies, ids, agencyID)
			}
			out := cmd.OutOrStdout()
			if len(agencies) == 0 {
				fmt.Fprintln(out, "No agencies match your filters.")
				return nil
			}
			tw := table(out)
			fmt.Fprintln(tw, "ID\tAGENCY\tTEAM\tRATE\tTIER\tSKILLS\t")
			for _, ag := range agencies {
				fmt.Fprintf(tw, "%d\t%s\t%d\t$%.0f/h\t%s\t%s\t\n",
					ag.UserID, ag.AgencyName, ag.TeamSize, ag.HourlyRate, tierName(ag.Tier), strings.Join(ag.Skills, ","))
			}
			return tw.Flush()
		},
	}
	f.register(cmd, true, true)
	return cmd
}

func (a *app) trainersCmd() *cobra.Command {
	var f filterFlags
	cmd := &cobra.Command{
		Use:   "trainers",
		Short: "List trainer profiles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			q := f.query()
			trainers, err := a.api.Trainers(cmd.Context(), q)
			if err != nil {
				return apiFailure(err)
			}
			trainers = filter.Apply(trainers, q)
			out := cmd.OutOrStdout()
			if len(trainers) == 0 {
				fmt.Fprintln(out, "No trainers match your filters.")
				return nil
			}
			tw := table(out)
			fmt.Fprintln(tw, "ID\tNAME\tHEADLINE\tRATE\tEXPERTISE\t")
			for _, t := range trainers {
				fmt.Fprintf(tw, "%d\t%s\t%s\t$%.0f/h\t%s\t\n",
					t.UserID, t.Name, t.Headline, t.HourlyRate, strings.Join(t.Expertise, ","))
			}
			return tw.Flush()
		},
	}
	f.register(cmd, false, false)
	return cmd
}

func (a *app) applyCmd() *cobra.Command {
	var cover string
	var rate float64
	cmd := &cobra.Command{
		Use:   "apply PROJECT_ID",
		Short: "Apply to an open project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			ap, err := a.api.Apply(cmd.Context(), id, cover, rate)
			if err != nil {
				return apiFailure(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Applied to project %d (application %d, %s).\n", id, ap.ID, ap.Status)
			return nil
		},
	}
	cmd.Flags().StringVar(&cover, "cover", "", "cover letter")
	cmd.Flags().Float64Var(&rate, "rate", 0, "proposed rate")
	return cmd
}

func (a *app) applicationsCmd() *cobra.Command {
	var project int64
	cmd := &cobra.Command{
		Use:   "applications",
		Short: "List your applications, or a project's applications with --project",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			apps, err := a.api.Applications(cmd.Context(), project)
			if err != nil {
				return apiFailure(err)
			}
			out := cmd.OutOrStdout()
			if len(apps) == 0 {
				fmt.Fprintln(out, "No applications yet.")
				return nil
			}
			tw := table(out)
			fmt.Fprintln(tw, "ID\tPROJECT\tAPPLICANT\tRATE\tSTATUS\tPICKED\t")
			for _, ap := range apps {
				projectName := idString(ap.ProjectID)
				if ap.Project != nil {
					projectName = ap.Project.Title
				}
				applicant := idString(ap.ApplicantID)
				if ap.Applicant != nil {
					applicant = ap.Applicant.Name
				}
				fmt.Fprintf(tw, "%d\t%s\t%s\t$%.0f\t%s\t%t\t\n",
					ap.ID, projectName, applicant, ap.ProposedRate, ap.Status, ap.IsPicked)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().Int64Var(&project, "project", 0, "project id (owner only)")
	cmd.AddCommand(
		a.applicationStatusCmd("accept", models.ApplicationAccepted),
		a.applicationStatusCmd("reject", models.ApplicationRejected),
		a.applicationPickCmd(),
	)
	return cmd
}

func tierName(t models.Tier) string {
	if t == models.TierNone {
		return "-"
	}
	return string(t)
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
