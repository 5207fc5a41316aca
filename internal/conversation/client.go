package conversation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"

	"tienda-chat/internal/domain"
)

const (
	// AudioPlaceholder stands in for a voice note in the relayed history.
	AudioPlaceholder = "Audio enviado"
	// ApologyMessage replaces the reply when the relay call fails.
	ApologyMessage = "Lo siento, ha ocurrido un error. Por favor, inténtalo de nuevo."
)

// SystemPreamble is prepended to every relayed history.
const SystemPreamble = "Eres el asistente de compras de TiendaGPT. Responde en español, de forma breve y amable, " +
	"a preguntas sobre productos, tallas, envíos, pagos y devoluciones. " +
	"Si no conoces la respuesta, dilo y ofrece ayuda con otro aspecto del producto."

// QuickReplies are the canned questions offered next to the input box.
var QuickReplies = []string{
	"¿Cómo comprar este producto?",
	"¿Cuánto tardar en llegar este producto?",
}

type Relayer interface {
	Relay(ctx context.Context, turns []domain.Turn) (string, error)
}

// DisplayError records why a reply was replaced by ApologyMessage.
type DisplayError struct {
	Err error
}

func (e *DisplayError) Error() string {
	return fmt.Sprintf("conversation: reply unavailable: %v", e.Err)
}

func (e *DisplayError) Unwrap() error { return e.Err }

// Client owns one conversation and allows one send at a time.
type Client struct {
	relay    Relayer
	conv     Conversation
	mic      Microphone
	capture  *Capture
	preamble string
	logger   *slog.Logger
	inFlight atomic.Bool
}

type Option func(*Client)

func WithMicrophone(mic Microphone) Option {
	return func(c *Client) {
		c.mic = mic
	}
}

func WithPreamble(p string) Option {
	return func(c *Client) {
		if strings.TrimSpace(p) != "" {
			c.preamble = p
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

func New(r Relayer, opts ...Option) (*Client, error) {
	if r == nil {
		return nil, errors.New("conversation: relayer must not be nil")
	}
	c := &Client{relay: r, preamble: SystemPreamble, logger: slog.Default()}
	for _, opt := range opts {
		opt(c)
	}
	c.capture = NewCapture(c.mic, c.logger)
	return c, nil
}

func (c *Client) Capture() *Capture { return c.capture }

func (c *Client) Conversation() *Conversation { return &c.conv }

func (c *Client) InFlight() bool { return c.inFlight.Load() }

// Send appends a user turn built from text, or from the captured voice note
// when there is one, relays the whole history and appends the reply. It
// returns false without doing anything when there is nothing to send or a
// send is already in flight. Relay failures end in an apology turn.
func (c *Client) Send(ctx context.Context, text string) bool {
	if !c.inFlight.CompareAndSwap(false, true) {
		c.logger.Debug("send dropped: another send is in flight")
		return false
	}
	defer c.inFlight.Store(false)

	text = strings.TrimSpace(text)
	clip, hasAudio := c.capture.Captured()
	if text == "" && !hasAudio {
		return false
	}

	user := Entry{Turn: domain.UserTurn(text)}
	if hasAudio {
		if text != "" {
			c.logger.Debug("typed text dropped in favour of the voice note", "text", text)
		}
		user = Entry{Turn: domain.UserTurn(AudioPlaceholder), Clip: &clip}
		defer c.capture.release(clip)
	}

	history := c.conv.append(user)
	payload := make([]domain.Turn, 0, len(history)+1)
	payload = append(payload, domain.SystemTurn(c.preamble))
	payload = append(payload, history...)

	reply, err := c.relay.Relay(ctx, payload)
	if err != nil {
		derr := &DisplayError{Err: err}
		c.logger.Warn("relay call failed; showing apology", "err", derr, "turns", len(payload))
		c.conv.append(Entry{Turn: domain.AssistantTurn(ApologyMessage), Err: derr})
		return true
	}
	c.conv.append(Entry{Turn: domain.AssistantTurn(reply)})
	return true
}
