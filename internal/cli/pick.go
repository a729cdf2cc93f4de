package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"hireloop/internal/filter"
	"hireloop/internal/pickstore"
)

var pickKinds = map[string]string{
	"projects":   pickstore.KeyProjects,
	"developers": pickstore.KeyDevelopers,
}

func pickKey(kind string) (string, error) {
	key, ok := pickKinds[kind]
	if !ok {
		return "", fmt.Errorf("unknown pick list %q (use projects or developers)", kind)
	}
	return key, nil
}

func (a *app) pickCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pick",
		Short: "Manage locally picked projects and developers",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "add projects|developers ID",
		Short: "Pick an entry",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := pickKey(args[0])
			if err != nil {
				return err
			}
			id, err := parseID(args[1])
			if err != nil {
				return err
			}
			changed, err := a.picks.Add(key, idString(id))
			if err != nil {
				return err
			}
			if changed {
				fmt.Fprintf(cmd.OutOrStdout(), "Picked %s %d.\n", args[0], id)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "%d is already picked.\n", id)
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "remove projects|developers ID",
		Short: "Un-pick an entry",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := pickKey(args[0])
			if err != nil {
				return err
			}
			changed, err := a.picks.Remove(key, args[1])
			if err != nil {
				return err
			}
			if changed {
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %s from picked %s.\n", args[1], args[0])
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "%s was not picked.\n", args[1])
			}
			return nil
		},
	})

	var prune bool
	list := &cobra.Command{
		Use:   "list projects|developers",
		Short: "Show picked entries resolved against the live lists",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := pickKey(args[0])
			if err != nil {
				return err
			}
			ids, err := a.picks.List(key)
			if err != nil {
				return err
			}

			if key == pickstore.KeyProjects {
				projects, err := a.api.Projects(cmd.Context(), "all", false, filter.Query{})
				if err != nil {
					return apiFailure(err)
				}
				if prune {
					if err := a.prune(cmd, key, liveIDs(projects, projectID)); err != nil {
						return err
					}
				}
				return a.printProjects(cmd, pickstore.Select(projects, ids, projectID))
			}

			talents, err := a.api.Talents(cmd.Context(), filter.Query{})
			if err != nil {
				return apiFailure(err)
			}
			agencies, err := a.api.Agencies(cmd.Context(), filter.Query{})
			if err != nil {
				return apiFailure(err)
			}
			if prune {
				live := append(liveIDs(talents, talentID), liveIDs(agencies, agencyID)...)
				if err := a.prune(cmd, key, live); err != nil {
					return err
				}
			}
			pickedTalents := pickstore.Select(talents, ids, talentID)
			pickedAgencies := pickstore.Select(agencies, ids, agencyID)
			out := cmd.OutOrStdout()
			if len(pickedTalents)+len(pickedAgencies) == 0 {
				fmt.Fprintln(out, "No picked developers.")
				return nil
			}
			tw := table(out)
			fmt.Fprintln(tw, "ID\tKIND\tNAME\tTITLE\tRATE\t")
			for _, t := range pickedTalents {
				fmt.Fprintf(tw, "%d\ttalent\t%s\t%s\t$%.0f/h\t\n", t.UserID, t.Name, t.Title, t.HourlyRate)
			}
			for _, ag := range pickedAgencies {
				fmt.Fprintf(tw, "%d\tagency\t%s\t%s\t$%.0f/h\t\n", ag.UserID, ag.AgencyName, truncate(ag.Description, 40), ag.HourlyRate)
			}
			return tw.Flush()
		},
	}
	list.Flags().BoolVar(&prune, "prune", false, "drop picked ids that no longer exist")
	cmd.AddCommand(list)

	return cmd
}

func liveIDs[T any](items []T, idOf func(T) string) []string {
	live := make([]string, 0, len(items))
	for _, it := range items {
		live = append(live, idOf(it))
	}
	return live
}

func (a *app) prune(cmd *cobra.Command, key string, live []string) error {
	n, err := a.picks.Prune(key, live)
	if err != nil {
		return err
	}
	if n > 0 {
		fmt.Fprintf(cmd.ErrOrStderr(), "Pruned %d stale id(s).\n", n)
	}
	return nil
}
