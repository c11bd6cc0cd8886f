package service

import (
	"context"
	"encoding/json"
	"net/url"
	"sync"

	"github.com/gleam/dashboard/internal/dto"
)

type backendCall struct {
	Method string
	Path   string
	Query  url.Values
	Token  string
	Body   interface{}
}

// fakeBackend records every call and answers through handle. A nil handle answers with
// an empty success.
type fakeBackend struct {
	mu     sync.Mutex
	calls  []backendCall
	handle func(c backendCall) (interface{}, error)
}

func (f *fakeBackend) do(c backendCall, out interface{}) error {
	f.mu.Lock()
	f.calls = append(f.calls, c)
	handle := f.handle
	f.mu.Unlock()

	if handle == nil {
		return nil
	}
	resp, err := handle(c)
	if err != nil {
		return err
	}
	if out == nil || resp == nil {
		return nil
	}
	b, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, out)
}

func (f *fakeBackend) Get(ctx context.Context, path string, query url.Values, token string, out interface{}) error {
	return f.do(backendCall{Method: "GET", Path: path, Query: query, Token: token}, out)
}

func (f *fakeBackend) Post(ctx context.Context, path, token string, body, out interface{}) error {
	return f.do(backendCall{Method: "POST", Path: path, Token: token, Body: body}, out)
}

func (f *fakeBackend) Put(ctx context.Context, path, token string, body, out interface{}) error {
	return f.do(backendCall{Method: "PUT", Path: path, Token: token, Body: body}, out)
}

func (f *fakeBackend) Patch(ctx context.Context, path, token string, body, out interface{}) error {
	return f.do(backendCall{Method: "PATCH", Path: path, Token: token, Body: body}, out)
}

func (f *fakeBackend) Delete(ctx context.Context, path, token string) error {
	return f.do(backendCall{Method: "DELETE", Path: path, Token: token}, nil)
}

func (f *fakeBackend) Calls() []backendCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]backendCall(nil), f.calls...)
}

func (f *fakeBackend) count(method, path string) int {
	n := 0
	for _, c := range f.Calls() {
		if c.Method == method && c.Path == path {
			n++
		}
	}
	return n
}

type recordedEvent struct {
	ThreadID string
	Type     string
	Payload  interface{}
}

type recordingBroadcaster struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (r *recordingBroadcaster) BroadcastToThread(threadID string, event dto.WSEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, recordedEvent{ThreadID: threadID, Type: event.Type, Payload: event.Payload})
}

func (r *recordingBroadcaster) Types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	types := make([]string, 0, len(r.events))
	for _, e := range r.events {
		types = append(types, e.Type)
	}
	return types
}
