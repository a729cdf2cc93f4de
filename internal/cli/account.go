package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"hireloop/internal/client"
	"hireloop/internal/cliconfig"
)

func (a *app) loginCmd() *cobra.Command {
	var server, token string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Store the server address and exchange a session token for an API token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if token == "" {
				return errors.New("--token is required")
			}
			if server == "" {
				server = a.cfg.Server
			}
			api := client.New(server, token)
			user, err := api.Session(cmd.Context())
			if err != nil {
				return apiFailure(err)
			}
			minted, err := api.CreateToken(cmd.Context())
			if err != nil {
				return apiFailure(err)
			}

			cfg := a.cfg
			cfg.Server = server
			cfg.Token = minted.Token
			if err := cliconfig.Save(a.cfgPath, cfg); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s (%s). Token valid until %s.\n",
				user.Name, user.Role, minted.ExpiresAt.Format("2 Jan 2006"))
			return nil
		},
	}
	cmd.Flags().StringVar(&server, "server", "", "server URL")
	cmd.Flags().StringVar(&token, "token", "", "session token")
	return cmd
}

func (a *app) whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := a.api.Session(cmd.Context())
			if err != nil {
				return apiFailure(err)
			}
			role := string(user.Role)
			if role == "" {
				role = "not onboarded"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (#%d) %s\n", user.Name, user.ID, role)
			return nil
		},
	}
}

func (a *app) unreadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unread",
		Short: "Show the number of unread messages",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := a.api.UnreadCount(cmd.Context())
			if err != nil {
				return apiFailure(err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), n)
			return nil
		},
	}
}

func (a *app) verificationCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verification",
		Short: "Check or submit identity verification",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show verification status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := a.api.VerificationStatus(cmd.Context())
			if err != nil {
				return apiFailure(err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), v.Status)
			if v.ReviewNote != "" {
				fmt.Fprintln(cmd.OutOrStdout(), "Note:", v.ReviewNote)
			}
			return nil
		},
	})

	var docType, docURL, note string
	submit := &cobra.Command{
		Use:   "submit",
		Short: "Submit a document for review",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := a.api.SubmitVerification(cmd.Context(), docType, docURL, note)
			if err != nil {
				return apiFailure(err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Submitted. Status:", v.Status)
			return nil
		},
	}
	submit.Flags().StringVar(&docType, "type", "passport", "document type (passport, id_card, business_license, certificate)")
	submit.Flags().StringVar(&docURL, "url", "", "link to the document")
	submit.Flags().StringVar(&note, "note", "", "note for the reviewer")
	cmd.AddCommand(submit)

	return cmd
}

func (a *app) trainerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trainer",
		Short: "Show or update your trainer profile",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show your trainer profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.api.TrainerProfile(cmd.Context())
			if err != nil {
				return apiFailure(err)
			}
			out := cmd.OutOrStdout()
			if p.Headline == "" {
				fmt.Fprintln(out, "No trainer profile yet. Create one with: hirectl trainer set --headline ...")
				return nil
			}
			fmt.Fprintf(out, "%s\n%s\nExpertise: %v\nFormats: %v\nRate: $%.0f/h\n",
				p.Headline, p.Bio, p.Expertise, p.SessionFormats, p.HourlyRate)
			return nil
		},
	})

	var in client.TrainerProfileInput
	set := &cobra.Command{
		Use:   "set",
		Short: "Create or replace your trainer profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.api.SaveTrainerProfile(cmd.Context(), in)
			if err != nil {
				return apiFailure(err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Saved:", p.Headline)
			return nil
		},
	}
	set.Flags().StringVar(&in.Headline, "headline", "", "one-line headline")
	set.Flags().StringVar(&in.Bio, "bio", "", "about you")
	set.Flags().StringSliceVar(&in.Expertise, "expertise", nil, "comma-separated expertise")
	set.Flags().StringSliceVar(&in.SessionFormats, "formats", nil, "one_on_one, group, workshop")
	set.Flags().Float64Var(&in.HourlyRate, "rate", 0, "hourly rate")
	cmd.AddCommand(set)

	return cmd
}
