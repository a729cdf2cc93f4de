package chat

import "errors"

var ErrNoConversation = errors.New("no conversation selected")
