package cmd

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/relaymatrix/internal/server"
	"github.com/OpenTraceLab/relaymatrix/pkg/metrics"
)

var (
	listenAddr  string
	withMetrics bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the matrix agent over HTTP",
	Long: `Keep a switch matrix bound and accept requests over HTTP:

  POST   /init              {"usbpath": "1-1.2:1.0"}
  POST   /link              {"spec": "USB1_IN -> USB1_OUT", "ignore_exclusive": false}
  PUT    /indicators/{n}    {"on": true}
  DELETE /indicators/{n}
  POST   /reset
  GET    /state
  GET    /nodes
  GET    /metrics

If --usbpath is given the matrix is initialized at startup. On shutdown every
switch is opened.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVarP(&listenAddr, "listen", "l", ":8080", "address to listen on")
	serveCmd.Flags().BoolVar(&withMetrics, "metrics", true, "serve Prometheus metrics on /metrics")
}

func runServe(cmd *cobra.Command, args []string) error {
	b, err := loadBoard()
	if err != nil {
		return err
	}

	log := newLogger()
	opts := []server.Option{server.WithLogger(log)}
	if withMetrics {
		opts = append(opts, server.WithMetrics(metrics.NewRegistry()))
	}
	session := server.NewSession(b, openBus, opts...)

	if usbPath != "" || adapterType == "sim" {
		if err := session.Init(usbPath); err != nil {
			return fmt.Errorf("initialize %s: %w", b.Name, err)
		}
	}

	ln, err := net.Listen("tcp", listenAddr)
	if err != nil {
		session.Close()
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Printf("Serving %s on %s\n", b.Name, ln.Addr())
	return server.Serve(ctx, ln, session)
}
