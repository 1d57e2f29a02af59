package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tablegate/tablegate/internal/config"
	"github.com/tablegate/tablegate/internal/gateway"
	"github.com/tablegate/tablegate/internal/server"
)

func newServeCmd() *cobra.Command {
	var (
		port int
		host string
		dev  bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the gateway HTTP server",
		Long: `Connects every service named in the config file, introspects every
configured table, and serves each one as a REST resource until interrupted.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(host, port, dev)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "HTTP listen port (overrides config)")
	cmd.Flags().StringVar(&host, "host", "", "HTTP listen host (overrides config)")
	cmd.Flags().BoolVar(&dev, "dev", false, "enable verbose debug logging")

	return cmd
}

func runServe(host string, port int, dev bool) error {
	logLevel := slog.LevelInfo
	if dev {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))

	f, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if host != "" {
		f.Server.Host = host
	}
	if port != 0 {
		f.Server.Port = port
	}
	if v := viper.GetInt("server.port"); v != 0 && port == 0 {
		f.Server.Port = v
	}

	ctx := context.Background()
	registry, err := gateway.Open(ctx, f)
	if err != nil {
		return fmt.Errorf("open services: %w", err)
	}
	logger.Info("services connected", "count", len(f.Services), "resources", registry.ResourceNames())

	srvCfg := server.DefaultConfig()
	srvCfg.Host = f.Server.Host
	srvCfg.Port = f.Server.Port
	if len(f.Server.CORS.Origins) > 0 {
		srvCfg.CORSOrigins = f.Server.CORS.Origins
	}
	if f.Server.RateLimit > 0 {
		srvCfg.RateLimit = f.Server.RateLimit
	}
	if d, err := parseDuration(f.Server.ShutdownTimeout); err == nil && d > 0 {
		srvCfg.ShutdownTimeout = d
	}
	srvCfg.AuthSecret = f.Server.AuthSecret

	srv := server.New(srvCfg, registry, logger)

	fmt.Printf("gateway listening on http://%s:%d\n", srvCfg.Host, srvCfg.Port)
	fmt.Printf("resources: %v\n", registry.ResourceNames())

	return srv.ListenAndServe()
}
