package telegram

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
)

const DefaultAPIURL = "https://api.telegram.org"

type Client struct {
	token  string
	apiURL string
	http   *http.Client
	log    logrus.FieldLogger
}

func NewClient(token string, log logrus.FieldLogger) *Client {
	return &Client{
		token:  token,
		apiURL: DefaultAPIURL,
		http:   &http.Client{Timeout: 35 * time.Second},
		log:    log,
	}
}

// WithAPIURL points the client at another Bot API host.
func (c *Client) WithAPIURL(u string) *Client {
	c.apiURL = u
	return c
}

func (c *Client) endpoint(method string) string {
	return fmt.Sprintf("%s/bot%s/%s", c.apiURL, c.token, method)
}

// GetMe returns the bot username used by the login widget.
func (c *Client) GetMe(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint("getMe"), nil)
	if err != nil {
		return "", err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("request: %w", err)
	}
	defer resp.Body.Close()

	var result struct {
		OK     bool `json:"ok"`
		Result struct {
			Username string `json:"username"`
		} `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decode: %w", err)
	}
	if !result.OK || result.Result.Username == "" {
		return "", fmt.Errorf("invalid response from Telegram API")
	}
	return result.Result.Username, nil
}

func (c *Client) SendMessage(chatID int64, text string) {
	resp, err := c.http.PostForm(c.endpoint("sendMessage"), url.Values{
		"chat_id":                  {strconv.FormatInt(chatID, 10)},
		"text":                     {text},
		"parse_mode":               {"HTML"},
		"disable_web_page_preview": {"true"},
	})
	if err != nil {
		c.log.WithError(err).Warn("telegram send failed")
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var result struct {
			Description string `json:"description"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&result)
		c.log.WithFields(logrus.Fields{
			"chat_id": chatID,
			"status":  resp.StatusCode,
		}).Warnf("telegram send error: %s", result.Description)
	}
}

type update struct {
	UpdateID int64    `json:"update_id"`
	Message  *message `json:"message"`
}

type message struct {
	Text string  `json:"text"`
	From *tgUser `json:"from"`
	Chat *tgChat `json:"chat"`
}

type tgUser struct {
	ID int64 `json:"id"`
}

type tgChat struct {
	ID int64 `json:"id"`
}

// StartHandler is called for each /start message with (tgUserID, chatID).
type StartHandler func(tgUserID, chatID int64)

// StartPolling long-polls getUpdates for /start commands until ctx is done.
// It clears any existing webhook first.
func (c *Client) StartPolling(ctx context.Context, onStart StartHandler) {
	c.deleteWebhook(ctx)

	go func() {
		offset := int64(0)
		for {
			if ctx.Err() != nil {
				return
			}

			updates, err := c.getUpdates(ctx, offset, 30)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				c.log.WithError(err).Warn("telegram poll failed")
				select {
				case <-ctx.Done():
					return
				case <-time.After(5 * time.Second):
				}
				continue
			}

			for _, u := range updates {
				offset = u.UpdateID + 1
				if u.Message != nil && u.Message.Text == "/start" && u.Message.From != nil && u.Message.Chat != nil {
					onStart(u.Message.From.ID, u.Message.Chat.ID)
				}
			}
		}
	}()
}

func (c *Client) getUpdates(ctx context.Context, offset int64, timeout int) ([]update, error) {
	q := url.Values{
		"offset":          {strconv.FormatInt(offset, 10)},
		"timeout":         {strconv.Itoa(timeout)},
		"allowed_updates": {`["message"]`},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint("getUpdates")+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var result struct {
		OK     bool     `json:"ok"`
		Result []update `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, err
	}
	if !result.OK {
		return nil, fmt.Errorf("getUpdates: not ok")
	}
	return result.Result, nil
}

func (c *Client) deleteWebhook(ctx context.Context) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint("deleteWebhook"), nil)
	if err != nil {
		return
	}
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.WithError(err).Warn("telegram deleteWebhook failed")
		return
	}
	resp.Body.Close()
}
