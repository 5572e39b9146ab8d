package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

type envelope[T any] struct {
	Results *[]T `json:"results"`
}

// DecodeList accepts either a bare JSON array or a {"results": [...]} envelope.
// Anything else is rejected with ErrUnexpectedShape.
func DecodeList[T any](body []byte) ([]T, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, ErrUnexpectedShape
	}
	switch trimmed[0] {
	case '[':
		var items []T
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		return nonNil(items), nil
	case '{':
		var env envelope[T]
		if err := json.Unmarshal(trimmed, &env); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		if env.Results == nil {
			return nil, ErrUnexpectedShape
		}
		return nonNil(*env.Results), nil
	}
	return nil, ErrUnexpectedShape
}

// GetList fetches a list endpoint and normalises it through DecodeList.
func GetList[T any](ctx context.Context, c *Client, path, token string) ([]T, error) {
	var raw json.RawMessage
	if err := c.Do(ctx, Request{Method: http.MethodGet, Path: path, Token: token}, &raw); err != nil {
		return nil, err
	}
	items, err := DecodeList[T](raw)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", path, err)
	}
	return items, nil
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
