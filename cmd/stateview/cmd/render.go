package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/go-drift/stateview/internal/avatar"
	"github.com/go-drift/stateview/internal/cache"
	"github.com/go-drift/stateview/internal/config"
	"github.com/go-drift/stateview/internal/profilecard"
	"github.com/go-drift/stateview/internal/randomuser"
	"github.com/go-drift/stateview/pkg/core"
	"github.com/go-drift/stateview/pkg/dispatch"
)

func init() {
	RegisterCommand(&Command{
		Name:  "render",
		Short: "Fetch one identity and write the card page",
		Long: `Fetch one random identity and write the rendered card page.

The profile picture is downscaled and embedded as a data URI so the page is
self-contained (disable with avatar.enabled: false in stateview.yaml).
Thumbnails are cached under <cache-dir>/avatars.

Flags:
  --gender any|male|female   Profile gender (default: ui.gender or any)
  --out FILE                 Write the page to FILE instead of stdout
  --config DIR               Directory holding stateview.yaml (default: .)`,
		Usage: "stateview render [--gender g] [--out file] [--config dir]",
		Run:   runRender,
	})
}

type renderOptions struct {
	gender    string
	out       string
	configDir string
}

func parseRenderArgs(args []string) (renderOptions, error) {
	opts := renderOptions{configDir: "."}
	for i := 0; i < len(args); i++ {
		matched := false
		for _, f := range []struct {
			name string
			dst  *string
		}{
			{"--gender", &opts.gender},
			{"--out", &opts.out},
			{"--config", &opts.configDir},
		} {
			value, skip, ok, err := flagValue(args, i, f.name)
			if err != nil {
				return opts, err
			}
			if ok {
				*f.dst = value
				i += skip
				matched = true
				break
			}
		}
		if !matched {
			return opts, fmt.Errorf("render: unexpected argument %q", args[i])
		}
	}
	return opts, nil
}

func runRender(args []string) error {
	opts, err := parseRenderArgs(args)
	if err != nil {
		return err
	}

	cfg, err := config.Resolve(opts.configDir)
	if err != nil {
		return err
	}
	gender := cfg.Gender
	if opts.gender != "" {
		if gender, err = randomuser.ParseGender(opts.gender); err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	page, state, err := renderPage(ctx, cfg, gender)
	if err != nil {
		return err
	}

	if opts.out == "" {
		fmt.Fprint(stdout, page)
	} else {
		if dir := filepath.Dir(opts.out); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("failed to create %s: %w", dir, err)
			}
		}
		if err := os.WriteFile(opts.out, []byte(page), 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", opts.out, err)
		}
		fmt.Fprintf(os.Stderr, "Wrote %s (%s)\n", opts.out, profilecard.Name(state))
	}

	if failed, ok := state.(profilecard.Failed); ok {
		return fmt.Errorf("render: identity not loaded: %w", failed.Err)
	}
	return nil
}

// renderPage runs one card on its own UI loop until the fetch settles and
// returns the page markup with the final state.
func renderPage(ctx context.Context, cfg *config.Resolved, gender randomuser.Gender) (string, profilecard.ViewState, error) {
	doc, err := profilecard.NewDocument()
	if err != nil {
		return "", nil, err
	}
	handles, err := profilecard.BindHandles(doc)
	if err != nil {
		return "", nil, err
	}

	opts := []profilecard.Option{
		profilecard.WithRegistry(core.NewRegistry()),
		profilecard.WithMicrointeraction(cfg.Microinteraction),
	}
	if cfg.AvatarEnabled {
		resolver, err := newAvatarResolver(cfg)
		if err != nil {
			return "", nil, err
		}
		opts = append(opts, profilecard.WithAvatars(resolver))
	}

	loop := dispatch.NewLoop(16)
	defer loop.Close()
	dispatch.RegisterDispatch(loop.Dispatch)
	defer dispatch.RegisterDispatch(nil)

	loopCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go loop.Run(loopCtx)

	settled := make(chan struct{}, 1)
	var card *profilecard.Card
	client := randomuser.NewClient(cfg.APIURL, cfg.APITimeout)
	err = loop.Call(ctx, func() {
		card = profilecard.NewCard(handles, client, opts...)
		card.OnChange(func(s profilecard.ViewState) {
			if _, loading := s.(profilecard.Loading); !loading {
				select {
				case settled <- struct{}{}:
				default:
				}
			}
		})
		card.Generate(ctx, gender)
	})
	if err != nil {
		return "", nil, err
	}

	// The fetch itself is bounded by the client timeout; avatar download
	// gets the same budget again.
	select {
	case <-settled:
	case <-ctx.Done():
		return "", nil, ctx.Err()
	case <-time.After(2*cfg.APITimeout + time.Second):
		return "", nil, fmt.Errorf("render: timed out waiting for the card to load")
	}

	var (
		page  string
		state profilecard.ViewState
	)
	err = loop.Call(ctx, func() {
		card.FlushMicrointeraction()
		state = card.State()
		page = "<!DOCTYPE html>\n" + doc.OuterHTML()
		card.Close()
	})
	return page, state, err
}

func newAvatarResolver(cfg *config.Resolved) (*avatar.Resolver, error) {
	dir, err := cache.AvatarDir(cfg.AvatarSize)
	if err != nil {
		return nil, err
	}
	return avatar.NewResolver(cfg.AvatarSize, dir, cfg.APITimeout), nil
}
