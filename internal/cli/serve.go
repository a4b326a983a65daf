package cli

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/sensala/viewer/pkg/observability"
	"github.com/sensala/viewer/pkg/server"
)

// serveOpts holds the flags of the serve command.
type serveOpts struct {
	addr     string
	metrics  bool
	detailed bool
}

// serveCommand creates the serve command for the interactive page.
func (c *CLI) serveCommand() *cobra.Command {
	var opts serveOpts

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the interactive viewer page",
		Long: `Serve the interactive viewer page and its JSON API.

The page has one input line and two drawing surfaces: the Stanford parse tree
on the left and the Sensala term tree on the right. Every connected browser
shares one session, so the latest submitted discourse wins.`,
		Example: `  sensala serve
  sensala serve --addr :8080 --metrics
  SENSALA_ENDPOINT=http://localhost:9000 sensala serve`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), cmd, &opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", "", "listen address (default :3000)")
	cmd.Flags().BoolVar(&opts.metrics, "metrics", false, "expose Prometheus metrics on /metrics")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "label nodes with their id and class")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, cmd *cobra.Command, opts *serveOpts) error {
	logger := loggerFromContext(ctx)

	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	if opts.addr != "" {
		cfg.Server.Addr = opts.addr
	}
	if cmd.Flags().Changed("metrics") {
		cfg.Server.Metrics = opts.metrics
	}

	srvOpts := server.Options{Logger: logger, Endpoint: cfg.Endpoint}
	if cfg.Server.Metrics {
		reg := newMetricsRegistry()
		observability.Register(observability.NewPrometheus(reg))
		defer observability.Reset()
		srvOpts.Gatherer = reg
	}

	a, err := c.newApp(ctx, cfg, opts.detailed)
	if err != nil {
		return err
	}
	defer a.Close()

	printInfo("Serving on %s", StyleLink.Render(displayURL(cfg.Server.Addr)))
	printDetail("Interpretation service: %s", cfg.Endpoint)

	return server.New(a.session, srvOpts).ListenAndServe(ctx, cfg.Server.Addr)
}

// newMetricsRegistry returns a registry with the Go runtime and process
// collectors already registered.
func newMetricsRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// displayURL turns a listen address into a URL a user can open.
func displayURL(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "http://localhost" + addr
	}
	return "http://" + addr
}
