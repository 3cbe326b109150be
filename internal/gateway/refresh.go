package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/vmtran/tourbook/internal/errs"
	"github.com/vmtran/tourbook/internal/model"
	"github.com/vmtran/tourbook/internal/session"
)

const refreshPath = "/api/authentication/refresh"

// TokenRefresher returns the refresh call to wire into the session manager.
// It bypasses Do on purpose: the refresh endpoint takes no bearer token and
// must never recurse into the 401 retry path.
func (c *Client) TokenRefresher() session.RefreshFunc {
	return func(ctx context.Context, refreshToken string) (model.TokenEnvelope, error) {
		payload, err := json.Marshal(map[string]string{"refreshToken": refreshToken})
		if err != nil {
			return model.TokenEnvelope{}, err
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+refreshPath, bytes.NewReader(payload))
		if err != nil {
			return model.TokenEnvelope{}, err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			return model.TokenEnvelope{}, fmt.Errorf("refresh: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return model.TokenEnvelope{}, &APIError{Status: resp.StatusCode, Message: readMessage(resp.Body)}
		}

		b, err := io.ReadAll(resp.Body)
		if err != nil {
			return model.TokenEnvelope{}, fmt.Errorf("refresh: read body: %w", err)
		}
		env, ok := decodeEnvelope(b)
		if !ok {
			return model.TokenEnvelope{}, fmt.Errorf("refresh: %w", errs.ErrMalformedResponse)
		}
		return env, nil
	}
}

// decodeEnvelope accepts the token envelope either at the top level or
// nested under a "data" wrapper; the backend has used both shapes.
func decodeEnvelope(b []byte) (model.TokenEnvelope, bool) {
	var env model.TokenEnvelope
	if json.Unmarshal(b, &env) == nil && env.Valid() {
		return env, true
	}
	var wrapped struct {
		Data model.TokenEnvelope `json:"data"`
	}
	if json.Unmarshal(b, &wrapped) == nil && wrapped.Data.Valid() {
		return wrapped.Data, true
	}
	return model.TokenEnvelope{}, false
}
