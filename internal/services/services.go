// Package services wraps the REST resources of the expense tracker API.
// Services hold no state and validate nothing, errors from the HTTP client
// are returned unchanged.
package services

import (
	"context"
	"encoding/json"
	"net/url"

	"github.com/pkg/errors"
)

type requester interface {
	Request(ctx context.Context, method, path string, body any) ([]byte, error)
}

type envelope[T any] struct {
	Success bool `json:"success"`
	Data    T    `json:"data"`
}

// call sends the request and unwraps the data envelope into T.
func call[T any](ctx context.Context, r requester, method, path string, body any) (T, error) {
	var zero T

	raw, err := r.Request(ctx, method, path, body)
	if err != nil {
		return zero, err
	}

	var env envelope[T]
	if err = json.Unmarshal(raw, &env); err != nil {
		return zero, errors.Wrap(err, "decoding response")
	}
	return env.Data, nil
}

// send is call for endpoints whose payload is ignored.
func send(ctx context.Context, r requester, method, path string, body any) error {
	_, err := r.Request(ctx, method, path, body)
	return err
}

func resourcePath(base, id string) string {
	return base + "/" + url.PathEscape(id)
}
