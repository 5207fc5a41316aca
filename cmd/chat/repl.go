package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"tienda-chat/internal/conversation"
	"tienda-chat/internal/domain"
	"tienda-chat/internal/integrations/relay"
)

var (
	userStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true)
	assistantStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("78")).Bold(true)
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	hintStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

func (c *chatCommander) run(ctx context.Context, cmd *cobra.Command) error {
	level := slog.LevelWarn
	if c.debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	transport, err := relay.New(c.server)
	if err != nil {
		return fmt.Errorf("could not create relay client: %w", err)
	}

	opts := []conversation.Option{conversation.WithLogger(logger)}
	if c.micFile != "" {
		opts = append(opts, conversation.WithMicrophone(&conversation.FileMicrophone{Path: c.micFile}))
	}
	client, err := conversation.New(transport, opts...)
	if err != nil {
		return fmt.Errorf("could not create chat client: %w", err)
	}

	return newSession(client, cmd.OutOrStdout()).loop(ctx, cmd.InOrStdin())
}

type session struct {
	client *conversation.Client
	out    io.Writer
	shown  int
}

func newSession(client *conversation.Client, out io.Writer) *session {
	return &session{client: client, out: out}
}

func (s *session) loop(ctx context.Context, in io.Reader) error {
	s.printQuickReplies()

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(s.out, s.prompt())
		if !scanner.Scan() {
			fmt.Fprintln(s.out)
			return scanner.Err()
		}
		if ctx.Err() != nil {
			return nil
		}
		if quit := s.handle(ctx, scanner.Text()); quit {
			return nil
		}
	}
}

// handle processes one input line and reports whether the session should end.
func (s *session) handle(ctx context.Context, line string) bool {
	line = strings.TrimSpace(line)
	cmd, arg, _ := strings.Cut(line, " ")

	switch cmd {
	case "/salir":
		return true
	case "/grabar":
		state := s.client.Capture().Toggle(ctx)
		fmt.Fprintln(s.out, hintStyle.Render("audio: "+state.String()))
	case "/borrar":
		s.client.Capture().Delete()
		fmt.Fprintln(s.out, hintStyle.Render("audio: "+s.client.Capture().State().String()))
	case "/rapido":
		n, err := strconv.Atoi(strings.TrimSpace(arg))
		if err != nil || n < 1 || n > len(conversation.QuickReplies) {
			fmt.Fprintln(s.out, errorStyle.Render(fmt.Sprintf("respuesta rápida inválida, usa 1-%d", len(conversation.QuickReplies))))
			return false
		}
		s.send(ctx, conversation.QuickReplies[n-1])
	default:
		s.send(ctx, line)
	}
	return false
}

func (s *session) send(ctx context.Context, text string) {
	if !s.client.Send(ctx, text) {
		return
	}
	entries := s.client.Conversation().Entries()
	for _, e := range entries[s.shown:] {
		s.printEntry(e)
	}
	s.shown = len(entries)
}

func (s *session) printEntry(e conversation.Entry) {
	switch e.Turn.Role {
	case domain.RoleUser:
		text := e.Turn.Content
		if e.Clip != nil {
			text += " (" + e.Clip.Ref + ")"
		}
		fmt.Fprintln(s.out, userStyle.Render("tú:")+" "+text)
	case domain.RoleAssistant:
		if e.Err != nil {
			fmt.Fprintln(s.out, errorStyle.Render("asistente: "+e.Turn.Content))
			return
		}
		fmt.Fprintln(s.out, assistantStyle.Render("asistente:")+" "+e.Turn.Content)
	}
}

func (s *session) printQuickReplies() {
	for i, q := range conversation.QuickReplies {
		fmt.Fprintln(s.out, hintStyle.Render(fmt.Sprintf("/rapido %d  %s", i+1, q)))
	}
}

func (s *session) prompt() string {
	if st := s.client.Capture().State(); st != conversation.Idle {
		return "[" + st.String() + "] > "
	}
	return "> "
}
