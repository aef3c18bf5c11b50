package service_test

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/tovigym/gymgate/internal/gymgate/vendorapi"
)

func silentLogger() *zap.Logger {
	return zap.NewNop()
}

// fakeVendor is a scriptable vendorapi.Client. Zero value behaves like a
// healthy vendor with no pending messages.
type fakeVendor struct {
	mu sync.Mutex

	tokenCalls int
	token      vendorapi.Token
	tokenErr   error

	subscribeCalls int
	subID          string
	subscribeErr   error

	pollCalls  int
	polled     []string // offsets passed to PollMessages, in order
	batches    [][]vendorapi.Message
	pollErrFor map[string]error // keyed by creds.AppKey

	ackCalls   int
	ackOffsets []string
	ackErr     error

	registerCalls int
	personID      string
	registerErr   error

	assignCalls int
	assignErr   error
}

var _ vendorapi.Client = (*fakeVendor)(nil)

func (f *fakeVendor) RequestToken(_ context.Context, _ vendorapi.Credentials) (vendorapi.Token, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokenCalls++
	if f.tokenErr != nil {
		return vendorapi.Token{}, f.tokenErr
	}
	if f.token.AccessToken == "" {
		return vendorapi.Token{AccessToken: "tok-1", ExpiresIn: 3600, AreaDomain: "area-1"}, nil
	}
	return f.token, nil
}

func (f *fakeVendor) Subscribe(_ context.Context, _ vendorapi.Credentials, _ string, _ []string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.subscribeCalls++
	if f.subscribeErr != nil {
		return "", f.subscribeErr
	}
	if f.subID == "" {
		return "sub-1", nil
	}
	return f.subID, nil
}

func (f *fakeVendor) PollMessages(_ context.Context, creds vendorapi.Credentials, _ string, offset string, _ int) ([]vendorapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pollCalls++
	f.polled = append(f.polled, offset)
	if err, ok := f.pollErrFor[creds.AppKey]; ok {
		return nil, err
	}
	if len(f.batches) == 0 {
		return nil, nil
	}
	batch := f.batches[0]
	f.batches = f.batches[1:]
	return batch, nil
}

func (f *fakeVendor) AcknowledgeOffset(_ context.Context, _ vendorapi.Credentials, _ string, offset string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ackCalls++
	f.ackOffsets = append(f.ackOffsets, offset)
	return f.ackErr
}

func (f *fakeVendor) RegisterPerson(_ context.Context, _ vendorapi.Credentials, _ string, _ vendorapi.Person) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.registerCalls++
	if f.registerErr != nil {
		return "", f.registerErr
	}
	if f.personID == "" {
		return "person-1", nil
	}
	return f.personID, nil
}

func (f *fakeVendor) AssignPrivileges(_ context.Context, _ vendorapi.Credentials, _, _, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.assignCalls++
	return f.assignErr
}

// vendorStats is a lock-free copy of the fake's call counters.
type vendorStats struct {
	tokenCalls     int
	subscribeCalls int
	pollCalls      int
	ackCalls       int
	registerCalls  int
	assignCalls    int
	polled         []string
	ackOffsets     []string
}

func (f *fakeVendor) stats() vendorStats {
	f.mu.Lock()
	defer f.mu.Unlock()
	return vendorStats{
		tokenCalls:     f.tokenCalls,
		subscribeCalls: f.subscribeCalls,
		pollCalls:      f.pollCalls,
		ackCalls:       f.ackCalls,
		registerCalls:  f.registerCalls,
		assignCalls:    f.assignCalls,
		polled:         append([]string(nil), f.polled...),
		ackOffsets:     append([]string(nil), f.ackOffsets...),
	}
}
