package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Chase-Garrett/songbird/internal/client"
	"github.com/Chase-Garrett/songbird/internal/server"

	"github.com/spf13/cobra"
)

var (
	address     string
	httpAddress string
	username    string
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "songbird",
	Short: "A terminal-based real-time chat application",
	Long: `Songbird is a terminal-based real-time chat system.

Run 'songbird serve' to start a server, then 'songbird connect' from any
number of terminals to chat. Every message is relayed to all other
connected participants.`,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the chat server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := server.ConfigFromEnv()
		if cmd.Flags().Changed("address") {
			cfg.Addr = address
		}
		if cmd.Flags().Changed("http-address") {
			cfg.HTTPAddr = httpAddress
		}

		srv := server.NewServer(cfg)
		if err := srv.Listen(); err != nil {
			return err
		}

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		go func() {
			<-sigCh
			log.Println("Shutting down...")
			srv.Shutdown()
		}()

		return srv.Serve()
	},
}

var connectCmd = &cobra.Command{
	Use:   "connect",
	Short: "Connect to a chat server as a client",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := client.Connect(address)
		if err != nil {
			return err
		}
		return c.Run(username)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&address, "address", "a", server.DefaultAddr, "Server address")
	serveCmd.Flags().StringVar(&httpAddress, "http-address", "", "Websocket gateway address (disabled when empty)")
	connectCmd.Flags().StringVarP(&username, "username", "u", "", "Username (prompted for when empty)")
	rootCmd.AddCommand(serveCmd, connectCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}
