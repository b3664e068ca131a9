package tg

import (
	"context"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"max.ks1230/expense-tracker/internal/logger"
	"max.ks1230/expense-tracker/internal/model/messages"
)

const defaultUpdateOffset = 0

type config interface {
	Token() string
	PollTimeout() int
	HandlerTimeoutSeconds() int64
}

type messageHandler interface {
	HandleIncomingMessage(ctx context.Context, msg messages.Message) error
}

type Client struct {
	client         *tgbotapi.BotAPI
	pollTimeout    int
	handlerTimeout time.Duration
}

func New(cfg config) (*Client, error) {
	client, err := tgbotapi.NewBotAPI(cfg.Token())
	if err != nil {
		return nil, errors.Wrap(err, "cannot NewBotApi")
	}
	return &Client{
		client:         client,
		pollTimeout:    cfg.PollTimeout(),
		handlerTimeout: time.Duration(cfg.HandlerTimeoutSeconds()) * time.Second,
	}, nil
}

func (c *Client) SendMessage(text string, userID int64) error {
	_, err := c.client.Send(tgbotapi.NewMessage(userID, text))
	if err != nil {
		return errors.Wrap(err, "client.Send")
	}
	return nil
}

// ListenUpdates handles messages one at a time until ctx is done.
func (c *Client) ListenUpdates(ctx context.Context, msgModel messageHandler) {
	u := tgbotapi.NewUpdate(defaultUpdateOffset)
	u.Timeout = c.pollTimeout

	updates := c.client.GetUpdatesChan(u)
	defer c.client.StopReceivingUpdates()

	logger.Info("Start listening for messages")

	for {
		select {
		case <-ctx.Done():
			logger.Info("Stop listening for messages")
			return
		case update := <-updates:
			c.listenOnce(ctx, update, msgModel)
		}
	}
}

func (c *Client) listenOnce(ctx context.Context, update tgbotapi.Update, msgModel messageHandler) {
	if update.Message == nil {
		return
	}
	logger.Info("incoming message",
		zap.String("user", update.Message.From.UserName),
		zap.Int64("chat", update.Message.Chat.ID))

	ctx, cancel := context.WithTimeout(ctx, c.handlerTimeout)
	defer cancel()

	err := msgModel.HandleIncomingMessage(ctx, messages.Message{
		Text:   update.Message.Text,
		UserID: update.Message.Chat.ID,
	})
	if err != nil {
		logger.Error("error processing message:", zap.Error(err))
	}
}
