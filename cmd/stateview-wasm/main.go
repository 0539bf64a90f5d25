//go:build js && wasm

// Command stateview-wasm drives the card page in the browser.
//
// Build with GOOS=js GOARCH=wasm and load it from the page next to
// wasm_exec.js.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/go-drift/stateview/internal/profilecard"
	"github.com/go-drift/stateview/internal/randomuser"
	"github.com/go-drift/stateview/pkg/dispatch"
	"github.com/go-drift/stateview/pkg/dom"
	sverrors "github.com/go-drift/stateview/pkg/errors"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "stateview: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	sverrors.SetHandler(&sverrors.LogHandler{Verbose: true})

	handles, err := profilecard.BindJSHandles()
	if err != nil {
		return err
	}
	genderSelect, ok := dom.ByID(profilecard.IDGenderSelect)
	if !ok {
		return fmt.Errorf("page has no #%s", profilecard.IDGenderSelect)
	}

	ctx := context.Background()
	loop := dispatch.NewLoop(64)
	dispatch.RegisterDispatch(loop.Dispatch)

	var card *profilecard.Card
	loop.Post(func() {
		card = profilecard.NewCard(handles, randomuser.DefaultClient())
		card.Generate(ctx, randomuser.GenderAny)
	})

	generate := func(dom.Element) {
		gender, err := randomuser.ParseGender(genderSelect.FormValue())
		if err != nil {
			gender = randomuser.GenderAny
		}
		// JS callbacks must not block; the write happens on the loop.
		go loop.Post(func() { card.Generate(ctx, gender) })
	}
	for _, id := range []string{profilecard.IDGenerate, profilecard.IDRetry} {
		if el, ok := dom.ByID(id); ok {
			el.On("click", generate)
		}
	}

	return loop.Run(ctx)
}
