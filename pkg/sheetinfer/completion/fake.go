package completion

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

type fakeReply struct {
	body string
	err  error
}

// Fake is a scripted Client. Replies are keyed by schema name and unit.
type Fake struct {
	mu      sync.Mutex
	replies map[string]fakeReply
	calls   []Request
}

// NewFake returns an empty Fake.
func NewFake() *Fake {
	return &Fake{replies: make(map[string]fakeReply)}
}

func fakeKey(schemaName, unit string) string {
	return schemaName + "\x00" + unit
}

// On scripts body as the answer for schemaName requests about unit.
func (f *Fake) On(schemaName, unit, body string) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.replies[fakeKey(schemaName, unit)] = fakeReply{body: body}
	return f
}

// Fail scripts err as the answer for schemaName requests about unit.
func (f *Fake) Fail(schemaName, unit string, err error) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.replies[fakeKey(schemaName, unit)] = fakeReply{err: err}
	return f
}

// Calls returns a copy of every request received so far.
func (f *Fake) Calls() []Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Request, len(f.calls))
	copy(out, f.calls)
	return out
}

// Complete returns the scripted reply, or an error when none exists.
func (f *Fake) Complete(ctx context.Context, req Request) (json.RawMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	f.calls = append(f.calls, req)
	reply, ok := f.replies[fakeKey(req.SchemaName, req.Unit)]
	f.mu.Unlock()

	if !ok {
		return nil, fmt.Errorf("%w: no scripted reply for %s/%s", ErrUnavailable, req.SchemaName, req.Unit)
	}
	if reply.err != nil {
		return nil, reply.err
	}
	return json.RawMessage(reply.body), nil
}
