package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/brogergvhs/kirarank/internal/lookup"
	"github.com/brogergvhs/kirarank/internal/util"
)

var flagListen string

func init() {
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the read-only work lookup API over the master table",
		RunE:  runServe,
	}
	serveCmd.Flags().StringVar(&flagListen, "listen", "", "listen address (default from config)")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	master, err := a.store.LoadMaster(cmd.Context())
	if err != nil {
		return err
	}
	idx := lookup.NewIndex(master, a.pipe.Registry)

	addr := a.cfg.Listen
	if flagListen != "" {
		addr = flagListen
	}
	if !a.cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           lookup.NewRouter(idx),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, cancel := util.SetupInterruptHandler(cmd.Context(), nil)
	defer cancel()
	go func() {
		<-ctx.Done()
		shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
		defer done()
		_ = srv.Shutdown(shutdownCtx)
	}()

	a.log.Infof("serving %d works (%d rows) on http://%s", idx.Works(), idx.Rows(), addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	return nil
}
