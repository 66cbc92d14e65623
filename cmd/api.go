package main

import (
	"context"
	"fmt"

	"github.com/hardbound/stacks/internal/shared"
	"github.com/urfave/cli/v3"
)

// attachSessionToken restores the persisted session, if any, and hands its
// bearer token to the raw API client. Unauthenticated calls proceed bare.
func (r *Runner) attachSessionToken(ctx context.Context) {
	store, err := r.sessionStore()
	if err != nil {
		r.logger.Debug("keystore unavailable, calling without a token", "error", err)
		return
	}

	store.Bootstrap(ctx)
	if store.Authenticated() {
		r.api.SetToken(r.library.Token())
	}
}

// APIGet performs a direct GET request and prints the raw response.
func (r *Runner) APIGet(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("path")
	if path == "" {
		return fmt.Errorf("%w: path argument is required", shared.ErrMissingArgument)
	}

	if r.api == nil {
		return fmt.Errorf("%w: API service not initialized", shared.ErrServiceUnavailable)
	}

	r.attachSessionToken(ctx)

	callCtx, cancel := r.callCtx(ctx)
	defer cancel()

	resp, err := r.api.Get(callCtx, path)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	r.logger.Infof("GET %s -> %d", path, resp.StatusCode)

	if resp.IsJSON && cmd.Bool("json") {
		return r.writeJSON(resp.JSONData, cmd.Bool("pretty"))
	}

	r.writePlain("Status: %d\n\n%s\n", resp.StatusCode, string(resp.Body))
	return nil
}

// APIPost performs a direct POST request with a JSON body.
func (r *Runner) APIPost(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("path")
	if path == "" {
		return fmt.Errorf("%w: path argument is required", shared.ErrMissingArgument)
	}

	if r.api == nil {
		return fmt.Errorf("%w: API service not initialized", shared.ErrServiceUnavailable)
	}

	r.attachSessionToken(ctx)

	callCtx, cancel := r.callCtx(ctx)
	defer cancel()

	resp, err := r.api.Post(callCtx, path, []byte(cmd.String("data")))
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	r.writePlain("Status: %d\n\n%s\n", resp.StatusCode, string(resp.Body))
	return nil
}

// APIDelete performs a direct DELETE request.
func (r *Runner) APIDelete(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("path")
	if path == "" {
		return fmt.Errorf("%w: path argument is required", shared.ErrMissingArgument)
	}

	if r.api == nil {
		return fmt.Errorf("%w: API service not initialized", shared.ErrServiceUnavailable)
	}

	r.attachSessionToken(ctx)

	callCtx, cancel := r.callCtx(ctx)
	defer cancel()

	resp, err := r.api.Delete(callCtx, path)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	r.writePlain("Status: %d\n\n%s\n", resp.StatusCode, string(resp.Body))
	return nil
}
