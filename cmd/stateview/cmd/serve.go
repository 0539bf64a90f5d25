package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-drift/stateview/internal/config"
	"github.com/go-drift/stateview/internal/randomuser"
	"github.com/go-drift/stateview/internal/server"
)

func init() {
	RegisterCommand(&Command{
		Name:  "serve",
		Short: "Serve a live card page",
		Long: `Serve the card page over HTTP.

The page is re-rendered on the server on every state change and pushed to
open browsers over a websocket at /ws. Prometheus metrics are served at
/metrics and a health check at /healthz.

Flags:
  --addr ADDR      Listen address (default: server.addr or 127.0.0.1:8080)
  --config DIR     Directory holding stateview.yaml (default: .)
  --log            Log every request`,
		Usage: "stateview serve [--addr addr] [--config dir] [--log]",
		Run:   runServe,
	})
}

type serveOptions struct {
	addr      string
	configDir string
	log       bool
}

func parseServeArgs(args []string) (serveOptions, error) {
	opts := serveOptions{configDir: "."}
	for i := 0; i < len(args); i++ {
		if args[i] == "--log" {
			opts.log = true
			continue
		}
		if value, skip, ok, err := flagValue(args, i, "--addr"); err != nil {
			return opts, err
		} else if ok {
			opts.addr = value
			i += skip
			continue
		}
		if value, skip, ok, err := flagValue(args, i, "--config"); err != nil {
			return opts, err
		} else if ok {
			opts.configDir = value
			i += skip
			continue
		}
		return opts, fmt.Errorf("serve: unexpected argument %q", args[i])
	}
	return opts, nil
}

func runServe(args []string) error {
	opts, err := parseServeArgs(args)
	if err != nil {
		return err
	}
	cfg, err := config.Resolve(opts.configDir)
	if err != nil {
		return err
	}
	addr := cfg.Addr
	if opts.addr != "" {
		addr = opts.addr
	}

	srvCfg := server.Config{
		Fetcher:          randomuser.NewClient(cfg.APIURL, cfg.APITimeout),
		Gender:           cfg.Gender,
		Microinteraction: cfg.Microinteraction,
		LogRequests:      opts.log,
	}
	if cfg.AvatarEnabled {
		resolver, err := newAvatarResolver(cfg)
		if err != nil {
			return err
		}
		srvCfg.Avatars = resolver
	}

	srv, err := server.New(srvCfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(os.Stderr, "stateview serving on http://%s\n", addr)
	return srv.ListenAndServe(ctx, addr)
}
