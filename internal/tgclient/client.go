package tgclient

import (
	"context"
	"fmt"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/jdelaire/rtuservicebot/core/ops"
)

// Long polls hold the request open for up to the poll timeout, so the HTTP
// timeout must exceed it.
const httpTimeout = 35 * time.Second

// Options configures the Bot API client.
type Options struct {
	// Endpoint is a format string taking the token and the method name.
	// Defaults to tgbotapi.APIEndpoint.
	Endpoint string
	Debug    bool
}

// contextClient binds every Bot API request to a context so that
// cancelling it aborts in-flight long polls.
type contextClient struct {
	ctx    context.Context
	client *http.Client
}

func (c *contextClient) Do(req *http.Request) (*http.Response, error) {
	return c.client.Do(req.WithContext(c.ctx))
}

// New creates a Bot API client and verifies the token with getMe.
func New(ctx context.Context, token string, opts Options) (*tgbotapi.BotAPI, error) {
	endpoint := opts.Endpoint
	if endpoint == "" {
		endpoint = tgbotapi.APIEndpoint
	}

	client := &contextClient{
		ctx:    ctx,
		client: &http.Client{Timeout: httpTimeout},
	}

	api, err := tgbotapi.NewBotAPIWithClient(token, endpoint, client)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}
	api.Debug = opts.Debug
	return api, nil
}

// Bind returns a copy of api whose requests are bound to ctx instead of the
// context api was created with. The copy shares api's token and endpoint.
func Bind(ctx context.Context, api *tgbotapi.BotAPI) *tgbotapi.BotAPI {
	base := http.DefaultClient
	switch c := api.Client.(type) {
	case *contextClient:
		base = c.client
	case *http.Client:
		base = c
	}

	bound := *api
	bound.Client = &contextClient{ctx: ctx, client: base}
	return &bound
}

// Requester is the subset of *tgbotapi.BotAPI used by SetCommands.
type Requester interface {
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// SetCommands publishes the bot's command menu with setMyCommands.
func SetCommands(api Requester, cmds []ops.Command) error {
	botCmds := make([]tgbotapi.BotCommand, len(cmds))
	for i, c := range cmds {
		botCmds[i] = tgbotapi.BotCommand{Command: c.Name, Description: c.Description}
	}
	if _, err := api.Request(tgbotapi.NewSetMyCommands(botCmds...)); err != nil {
		return fmt.Errorf("set bot commands: %w", err)
	}
	return nil
}
