package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"hireloop/internal/chat"
	"hireloop/internal/models"
)

func (a *app) chatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "List conversations, start one, or open one interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			me, err := a.api.Session(cmd.Context())
			if err != nil {
				return apiFailure(err)
			}
			convs, err := a.api.Conversations(cmd.Context())
			if err != nil {
				return apiFailure(err)
			}
			out := cmd.OutOrStdout()
			if len(convs) == 0 {
				fmt.Fprintln(out, "No conversations yet.")
				return nil
			}
			tw := table(out)
			fmt.Fprintln(tw, "ID\tWITH\tUNREAD\tLAST\t")
			for _, c := range convs {
				last := ""
				if c.LastMessage != nil {
					last = truncate(c.LastMessage.Content, 40)
				}
				fmt.Fprintf(tw, "%d\t%s\t%d\t%s\t\n", c.ID, otherName(c, me.ID), c.UnreadCount, last)
			}
			return tw.Flush()
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "start USER_ID",
		Short: "Open (or reuse) a conversation with a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			c, err := a.api.StartConversation(cmd.Context(), id)
			if err != nil {
				return apiFailure(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Conversation %d. Open it with: hirectl chat open %d\n", c.ID, c.ID)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "open CONVERSATION_ID",
		Short: "Follow a conversation and send lines from stdin (/quit to leave)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			me, err := a.api.Session(cmd.Context())
			if err != nil {
				return apiFailure(err)
			}
			return a.openChat(cmd.Context(), id, me.ID, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	})

	return cmd
}

// transcript prints each message once, in the order the view returns them.
type transcript struct {
	mu      sync.Mutex
	out     io.Writer
	me      int64
	printed map[int64]bool
}

func (t *transcript) update(s chat.Snapshot) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, m := range s.Messages {
		if t.printed[m.ID] {
			continue
		}
		t.printed[m.ID] = true
		who := "them"
		if m.SenderID == t.me {
			who = "you"
		}
		fmt.Fprintf(t.out, "[%s] %s: %s\n", m.CreatedAt.Local().Format("15:04"), who, m.Content)
	}
}

func (a *app) openChat(ctx context.Context, id, me int64, in io.Reader, out io.Writer) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	tr := &transcript{out: out, me: me, printed: map[int64]bool{}}
	view := chat.NewView(a.api, chat.Options{Log: a.log, OnChange: tr.update})
	if err := view.Select(ctx, id); err != nil {
		return apiFailure(err)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		view.Run(ctx)
	}()

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "/quit" {
			break
		}
		if _, err := view.Send(ctx, line); err != nil {
			fmt.Fprintln(out, "Error:", apiFailure(err))
		}
	}

	cancel()
	<-done
	return scanner.Err()
}

func otherName(c models.Conversation, viewerID int64) string {
	var names []string
	for _, p := range c.Participants {
		if p != nil && p.ID != viewerID {
			names = append(names, p.Name)
		}
	}
	if len(names) == 0 {
		return "-"
	}
	return strings.Join(names, ", ")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
