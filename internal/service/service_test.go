package service

import (
	"context"
	"encoding/json"
	"testing"

	"go.uber.org/zap"
)

// fakeGateway records calls and plays back canned JSON responses by path.
type fakeGateway struct {
	calls     []gwCall
	responses map[string]string // path -> JSON body
	err       error
}

type gwCall struct {
	method string
	path   string
	body   any
}

var _ Gateway = (*fakeGateway)(nil)

func (f *fakeGateway) do(method, path string, body, out any) error {
	f.calls = append(f.calls, gwCall{method: method, path: path, body: body})
	if f.err != nil {
		return f.err
	}
	if out == nil {
		return nil
	}
	resp, ok := f.responses[path]
	if !ok {
		return nil
	}
	return json.Unmarshal([]byte(resp), out)
}

func (f *fakeGateway) Get(_ context.Context, path string, out any) error {
	return f.do("GET", path, nil, out)
}
func (f *fakeGateway) Post(_ context.Context, path string, body, out any) error {
	return f.do("POST", path, body, out)
}
func (f *fakeGateway) Put(_ context.Context, path string, body, out any) error {
	return f.do("PUT", path, body, out)
}
func (f *fakeGateway) Delete(_ context.Context, path string, out any) error {
	return f.do("DELETE", path, nil, out)
}
func (f *fakeGateway) DoRaw(_ context.Context, method, path, _ string, _ []byte, out any) error {
	return f.do(method, path, nil, out)
}

func (f *fakeGateway) lastCall(t *testing.T) gwCall {
	t.Helper()
	if len(f.calls) == 0 {
		t.Fatalf("no gateway calls recorded")
	}
	return f.calls[len(f.calls)-1]
}

func nopLogger() *zap.Logger { return zap.NewNop() }
