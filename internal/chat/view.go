// Package chat keeps a terminal-side view of the user's conversations fresh by
// polling the REST API.
package chat

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"hireloop/internal/models"
)

const (
	DefaultMessageInterval      = 3 * time.Second
	DefaultConversationInterval = 5 * time.Second
)

// API is the subset of the REST client the view needs.
type API interface {
	Conversations(ctx context.Context) ([]models.Conversation, error)
	Messages(ctx context.Context, conversationID int64) ([]models.Message, error)
	SendMessage(ctx context.Context, conversationID int64, content string) (*models.Message, error)
	MarkRead(ctx context.Context, conversationID int64) (int64, error)
}

type Options struct {
	MessageInterval      time.Duration
	ConversationInterval time.Duration
	Log                  logrus.FieldLogger
	// OnChange receives a snapshot after every applied update.
	OnChange func(Snapshot)
}

type Snapshot struct {
	Conversations []models.Conversation
	Selected      int64
	Messages      []models.Message
}

// View holds the conversation list and the selected conversation's messages.
//
// Every fetch takes a sequence number when it is issued. A response is applied
// only if nothing newer has been applied to the same list since, so a slow
// poll can never overwrite a send, a mark-read or a selection change.
type View struct {
	api  API
	opts Options

	mu       sync.Mutex
	convs    []models.Conversation
	selected int64
	msgs     []models.Message

	convIssued, convApplied uint64
	msgIssued, msgApplied   uint64
}

func NewView(api API, opts Options) *View {
	if opts.MessageInterval <= 0 {
		opts.MessageInterval = DefaultMessageInterval
	}
	if opts.ConversationInterval <= 0 {
		opts.ConversationInterval = DefaultConversationInterval
	}
	if opts.Log == nil {
		opts.Log = logrus.StandardLogger()
	}
	return &View{api: api, opts: opts}
}

func (v *View) Snapshot() Snapshot {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.snapshotLocked()
}

func (v *View) snapshotLocked() Snapshot {
	s := Snapshot{Selected: v.selected}
	s.Conversations = append([]models.Conversation{}, v.convs...)
	s.Messages = append([]models.Message{}, v.msgs...)
	return s
}

func (v *View) changed() {
	if v.opts.OnChange == nil {
		return
	}
	v.opts.OnChange(v.Snapshot())
}

// Select switches to a conversation, loads its messages and marks it read.
func (v *View) Select(ctx context.Context, conversationID int64) error {
	v.mu.Lock()
	v.selected = conversationID
	v.msgs = nil
	v.msgIssued++
	v.msgApplied = v.msgIssued
	v.mu.Unlock()
	v.changed()

	if err := v.RefreshMessages(ctx); err != nil {
		return err
	}

	if _, err := v.api.MarkRead(ctx, conversationID); err != nil {
		v.opts.Log.WithError(err).WithField("conversation_id", conversationID).Warn("mark read failed")
		return err
	}

	v.mu.Lock()
	v.convIssued++
	v.convApplied = v.convIssued
	for i := range v.convs {
		if v.convs[i].ID == conversationID {
			v.convs[i].UnreadCount = 0
		}
	}
	v.mu.Unlock()
	v.changed()

	return v.RefreshConversations(ctx)
}

// RefreshMessages re-fetches the selected conversation. It is a no-op when
// nothing is selected.
func (v *View) RefreshMessages(ctx context.Context) error {
	v.mu.Lock()
	id := v.selected
	v.msgIssued++
	seq := v.msgIssued
	v.mu.Unlock()

	if id == 0 {
		return nil
	}

	msgs, err := v.api.Messages(ctx, id)
	if err != nil {
		v.opts.Log.WithError(err).WithField("conversation_id", id).Warn("fetch messages failed")
		return err
	}

	v.mu.Lock()
	if seq <= v.msgApplied || id != v.selected {
		v.mu.Unlock()
		return nil
	}
	v.msgApplied = seq
	v.msgs = msgs
	v.mu.Unlock()
	v.changed()
	return nil
}

func (v *View) RefreshConversations(ctx context.Context) error {
	v.mu.Lock()
	v.convIssued++
	seq := v.convIssued
	v.mu.Unlock()

	convs, err := v.api.Conversations(ctx)
	if err != nil {
		v.opts.Log.WithError(err).Warn("fetch conversations failed")
		return err
	}

	v.mu.Lock()
	if seq <= v.convApplied {
		v.mu.Unlock()
		return nil
	}
	v.convApplied = seq
	v.convs = convs
	v.mu.Unlock()
	v.changed()
	return nil
}

// Send posts content to the selected conversation and appends the message the
// server returns. Polls issued before the send are discarded.
func (v *View) Send(ctx context.Context, content string) (*models.Message, error) {
	v.mu.Lock()
	id := v.selected
	v.mu.Unlock()
	if id == 0 {
		return nil, ErrNoConversation
	}

	msg, err := v.api.SendMessage(ctx, id, content)
	if err != nil {
		v.opts.Log.WithError(err).WithField("conversation_id", id).Warn("send message failed")
		return nil, err
	}

	v.mu.Lock()
	if id == v.selected {
		v.msgIssued++
		v.msgApplied = v.msgIssued
		if !containsMessage(v.msgs, msg.ID) {
			v.msgs = append(v.msgs, *msg)
		}
	}
	v.mu.Unlock()
	v.changed()
	return msg, nil
}

// Run polls messages and conversations until ctx is cancelled. Failures are
// logged by the refresh calls and the previous state is kept.
func (v *View) Run(ctx context.Context) {
	_ = v.RefreshConversations(ctx)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		v.loop(ctx, v.opts.MessageInterval, v.RefreshMessages)
	}()
	go func() {
		defer wg.Done()
		v.loop(ctx, v.opts.ConversationInterval, v.RefreshConversations)
	}()
	wg.Wait()
}

func (v *View) loop(ctx context.Context, every time.Duration, fn func(context.Context) error) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_ = fn(ctx)
		}
	}
}

func containsMessage(msgs []models.Message, id int64) bool {
	for _, m := range msgs {
		if m.ID == id {
			return true
		}
	}
	return false
}
