package cmds

import (
	"clientsvc/internal/api"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the /clients HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, _, err := openService(cmd)
		if err != nil {
			return err
		}
		stop, done := api.RunServerInterruptible(viper.GetInt("port"), svc)

		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		select {
		case s := <-sig:
			log.Infof("received %s, shutting down", s)
			close(stop)
			return <-done
		case err := <-done:
			return err
		}
	},
}

func init() {
	serveCmd.Flags().Int("port", 8080, "HTTP listen port")
}
