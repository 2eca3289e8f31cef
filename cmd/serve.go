package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"invoicer/internal/invoice"
	"invoicer/internal/logger"
	"invoicer/internal/server"
	"invoicer/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve a live preview of the working invoice",
	Long: `Start a local HTTP server with a preview of the working invoice and a
JSON API to edit, print, download, save and load it.

The working invoice is read at start (a new one is started if the file
does not exist) and written back when the server stops.`,
	Example: `  invoicer serve
  invoicer serve --addr 127.0.0.1:9000 --no-store`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", "", "Listen address (default: SERVER_ADDR)")
	serveCmd.Flags().Bool("no-store", false, "Run without a document store")
}

func runServe(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("serve")

	addr, _ := cmd.Flags().GetString("addr")
	noStore, _ := cmd.Flags().GetBool("no-store")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if addr == "" {
		addr = cfg.ServerAddr
	}

	env, err := editEnv()
	if err != nil {
		return err
	}
	inv, err := readDocument(documentPath)
	if errors.Is(err, errNoDocument) {
		log.Info().Str("file", documentPath).Msg("No working invoice, starting a new one")
		inv = invoice.NewInvoice(env.Today())
	} else if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var st store.Store
	if !noStore {
		st, err = store.Open(ctx, cfg)
		if err != nil {
			return handleStoreError(err, log)
		}
		defer st.Close()
	}

	session := invoice.NewSession(inv, env)
	srv, err := server.New(session, st, server.Options{
		StoreTimeout:  cfg.StoreTimeout,
		ExportTimeout: cfg.ExportTimeout,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Preview at http://%s/\n", addr)
	serveErr := srv.ListenAndServe(ctx, addr)

	if err := writeDocument(documentPath, session.Snapshot()); err != nil {
		log.Error().Err(err).Msg("Failed to write back working invoice")
		return errors.Join(serveErr, err)
	}
	log.Info().Str("file", documentPath).Msg("Working invoice written back")
	return serveErr
}
