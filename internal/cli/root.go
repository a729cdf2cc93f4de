// Package cli implements the hirectl commands.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"hireloop/internal/client"
	"hireloop/internal/cliconfig"
	"hireloop/internal/logger"
	"hireloop/internal/pickstore"
)

// displayError is a failure whose Error text is ready to show a user.
type displayError struct {
	msg string
	err error
}

func (e *displayError) Error() string { return e.msg }
func (e *displayError) Unwrap() error { return e.err }

// apiFailure turns a REST client error into the server's message, or the
// generic fallback when there is none.
func apiFailure(err error) error {
	return &displayError{msg: client.Message(err), err: err}
}

type app struct {
	cfgPath string
	cfg     cliconfig.Config
	api     *client.Client
	picks   *pickstore.Store
	log     *logrus.Logger
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "hirectl",
		Short:         "Browse projects and talent, apply, and chat from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
	}
	root.PersistentFlags().StringVar(&a.cfgPath, "config", "", "config file (default $HIRECTL_CONFIG or ~/.config/hirectl/config.yaml)")

	root.AddCommand(
		a.loginCmd(),
		a.whoamiCmd(),
		a.projectsCmd(),
		a.talentsCmd(),
		a.agenciesCmd(),
		a.trainersCmd(),
		a.applyCmd(),
		a.applicationsCmd(),
		a.pickCmd(),
		a.chatCmd(),
		a.unreadCmd(),
		a.verificationCmd(),
		a.trainerCmd(),
	)
	return root
}

func (a *app) init(cmd *cobra.Command) error {
	if a.cfgPath == "" {
		p, err := cliconfig.DefaultPath()
		if err != nil {
			return err
		}
		a.cfgPath = p
	}
	cfg, err := cliconfig.Load(a.cfgPath)
	if err != nil {
		return err
	}
	a.cfg = cfg

	a.log = logger.New("warn", "text")
	a.log.SetOutput(cmd.ErrOrStderr())

	a.api = client.New(cfg.Server, cfg.Token)
	a.picks, err = pickstore.Open(cfg.PicksFile)
	return err
}

// Execute runs hirectl and prints failures to stderr.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer, stdin io.Reader) int {
	root := NewRootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetIn(stdin)
	if err := root.ExecuteContext(ctx); err != nil {
		var de *displayError
		if errors.As(err, &de) {
			fmt.Fprintln(stderr, "Error:", de.msg)
		} else {
			fmt.Fprintln(stderr, "Error:", err)
		}
		return 1
	}
	return 0
}

func table(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}

func idString(id int64) string { return strconv.FormatInt(id, 10) }
