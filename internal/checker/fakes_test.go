package checker

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/leozw/domain-inspector/internal/core"
)

type fakeWhoisClient struct {
	record *RawWhoisRecord
	err    error
	panic  any

	mu      sync.Mutex
	queried []string
}

func (f *fakeWhoisClient) Query(_ context.Context, name string) (*RawWhoisRecord, error) {
	f.mu.Lock()
	f.queried = append(f.queried, name)
	f.mu.Unlock()

	if f.panic != nil {
		panic(f.panic)
	}
	return f.record, f.err
}

type fakeResolver struct {
	answers map[core.RecordType][]string
	errs    map[core.RecordType]error
	panics  map[core.RecordType]any
	calls   atomic.Int32

	mu    sync.Mutex
	names []string
}

func (f *fakeResolver) Resolve(_ context.Context, name string, recordType core.RecordType) ([]string, error) {
	f.calls.Add(1)
	f.mu.Lock()
	f.names = append(f.names, name)
	f.mu.Unlock()

	if p := f.panics[recordType]; p != nil {
		panic(p)
	}
	if err := f.errs[recordType]; err != nil {
		return nil, err
	}
	answers, ok := f.answers[recordType]
	if !ok {
		return nil, ErrNoAnswer
	}
	return answers, nil
}

type fakeHTTPSClient struct {
	code  int
	err   error
	panic any

	mu   sync.Mutex
	urls []string
}

func (f *fakeHTTPSClient) Get(_ context.Context, url string) (int, error) {
	f.mu.Lock()
	f.urls = append(f.urls, url)
	f.mu.Unlock()

	if f.panic != nil {
		panic(f.panic)
	}
	return f.code, f.err
}
