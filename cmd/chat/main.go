// Command chat is a terminal client for the chat relay.
package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

const chatLongDesc string = `Chat with the store assistant through the relay.

Type a message and press enter to send it. Commands:
  /grabar     start or stop an audio note (needs --mic-file)
  /borrar     discard the current audio note
  /rapido N   send quick reply N
  /salir      quit

Examples:
  chat
  chat --server https://tienda.example.com --mic-file ./nota.wav`

const chatShortDesc string = "Terminal client for the chat relay"

type chatCommander struct {
	server  string
	micFile string
	debug   bool
}

func NewRootCmd() *cobra.Command {
	cmder := &chatCommander{}

	cmd := &cobra.Command{
		Use:          "chat",
		Short:        chatShortDesc,
		Long:         chatLongDesc,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.run(cmd.Context(), cmd)
		},
	}

	defaultServer := os.Getenv("CHAT_SERVER")
	if defaultServer == "" {
		defaultServer = "http://localhost:8080"
	}
	cmd.Flags().StringVarP(&cmder.server, "server", "s", defaultServer, "Relay base URL (env CHAT_SERVER)")
	cmd.Flags().StringVar(&cmder.micFile, "mic-file", "", "Audio file used as the microphone for /grabar")
	cmd.Flags().BoolVar(&cmder.debug, "debug", false, "Log debug output to stderr")

	return cmd
}
