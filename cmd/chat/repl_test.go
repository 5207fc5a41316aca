package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"tienda-chat/internal/conversation"
	"tienda-chat/internal/domain"
)

type stubRelayer struct {
	reply string
	err   error
	calls [][]domain.Turn
}

func (s *stubRelayer) Relay(_ context.Context, turns []domain.Turn) (string, error) {
	s.calls = append(s.calls, turns)
	return s.reply, s.err
}

type stubMic struct{}

func (stubMic) Open(context.Context) (conversation.Stream, error) { return &stubStream{}, nil }

type stubStream struct{}

func (*stubStream) Stop() (conversation.Clip, error) {
	return conversation.Clip{Ref: "file:///tmp/nota.wav", MIMEType: "audio/wav"}, nil
}

func (*stubStream) Close() error { return nil }

func runSession(t *testing.T, r *stubRelayer, input string, opts ...conversation.Option) string {
	t.Helper()
	opts = append(opts, conversation.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	client, err := conversation.New(r, opts...)
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, newSession(client, &out).loop(context.Background(), strings.NewReader(input)))
	return out.String()
}

func TestSession_SendsAndPrintsReply(t *testing.T) {
	r := &stubRelayer{reply: "¡Hola! ¿En qué puedo ayudarte?"}
	out := runSession(t, r, "hola\n/salir\n")

	require.Len(t, r.calls, 1)
	require.Contains(t, out, "hola")
	require.Contains(t, out, "¡Hola! ¿En qué puedo ayudarte?")
}

func TestSession_QuickReply(t *testing.T) {
	r := &stubRelayer{reply: "ok"}
	out := runSession(t, r, "/rapido 2\n/rapido 9\n")

	require.Len(t, r.calls, 1)
	require.Equal(t, domain.UserTurn(conversation.QuickReplies[1]), r.calls[0][1])
	require.Contains(t, out, "respuesta rápida inválida")
}

func TestSession_BlankLinesAreIgnored(t *testing.T) {
	r := &stubRelayer{reply: "ok"}
	runSession(t, r, "\n   \n")
	require.Empty(t, r.calls)
}

func TestSession_FailureShowsApology(t *testing.T) {
	r := &stubRelayer{err: errors.New("relay: unexpected status 500")}
	out := runSession(t, r, "hola\n")
	require.Contains(t, out, conversation.ApologyMessage)
}

func TestSession_AudioNote(t *testing.T) {
	r := &stubRelayer{reply: "Recibido"}
	out := runSession(t, r, "/grabar\n/grabar\n\n", conversation.WithMicrophone(stubMic{}))

	require.Contains(t, out, "audio: recording")
	require.Contains(t, out, "audio: captured")
	require.Len(t, r.calls, 1)
	require.Equal(t, domain.UserTurn(conversation.AudioPlaceholder), r.calls[0][1])
	require.Contains(t, out, "file:///tmp/nota.wav")
}

func TestSession_DeleteAudioNote(t *testing.T) {
	r := &stubRelayer{reply: "ok"}
	out := runSession(t, r, "/grabar\n/borrar\n\n", conversation.WithMicrophone(stubMic{}))

	require.Contains(t, out, "audio: idle")
	require.Empty(t, r.calls)
}

func TestNewRootCmd_Flags(t *testing.T) {
	t.Setenv("CHAT_SERVER", "http://relay.test")
	cmd := NewRootCmd()

	server, err := cmd.Flags().GetString("server")
	require.NoError(t, err)
	require.Equal(t, "http://relay.test", server)
	require.NotNil(t, cmd.Flags().Lookup("mic-file"))
	require.NotNil(t, cmd.Flags().Lookup("debug"))
}
