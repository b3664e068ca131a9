package messages

import (
	"context"
	"time"

	"github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/ext"
)

const failureMessage = "Sorry, something wrong happened..."

type messageSender interface {
	SendMessage(text string, userID int64) error
}

type MessageHandler interface {
	HandleMessage(ctx context.Context, text string, userID int64) (string, error)
}

type Service struct {
	tgClient messageSender
	handler  MessageHandler
}

type Option func(o *options)

type options struct {
	location *time.Location
	now      func() time.Time
}

// WithLocation sets the time zone dates are shown and parsed in.
func WithLocation(loc *time.Location) Option {
	return func(o *options) {
		o.location = loc
	}
}

func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

func NewService(tgClient messageSender, sessions sessionSource, opts ...Option) *Service {
	o := options{location: time.UTC, now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return &Service{
		tgClient: tgClient,
		handler:  newHandler(sessions, o.location, o.now),
	}
}

// Message is an incoming chat message. UserID is the chat the reply goes
// to and the session it acts on.
type Message struct {
	Text   string
	UserID int64
}

func (s *Service) HandleIncomingMessage(ctx context.Context, msg Message) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "handleMessage")
	defer span.Finish()

	cmd, _ := parseCommand(msg.Text)
	span.SetTag("command", cmd)

	start := time.Now()
	err := s.handle(ctx, msg)
	elapsed := time.Since(start)

	observeResponse(cmd, elapsed, err != nil)
	if err != nil {
		ext.Error.Set(span, true)
	}
	return err
}

func (s *Service) handle(ctx context.Context, msg Message) error {
	resp, err := s.handler.HandleMessage(ctx, msg.Text, msg.UserID)
	if err != nil {
		text := failureMessage
		if resp != "" {
			text += "\n" + resp
		}
		_ = s.tgClient.SendMessage(text, msg.UserID)
		return err
	}
	return s.tgClient.SendMessage(resp, msg.UserID)
}
