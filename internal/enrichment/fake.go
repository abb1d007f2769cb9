package enrichment

import (
	"context"
	"sync"
)

// FakeSource is an in-memory Source for tests. Per-mint errors and a global
// delay simulate slow or failing providers.
type FakeSource struct {
	mu   sync.Mutex
	data map[string]HolderInfo
	errs map[string]error

	// Block, when set, is closed by the test to release pending fetches.
	Block chan struct{}

	calls int
}

// NewFakeSource creates an empty fake.
func NewFakeSource() *FakeSource {
	return &FakeSource{
		data: make(map[string]HolderInfo),
		errs: make(map[string]error),
	}
}

// Set stores holder data for a mint.
func (f *FakeSource) Set(mint string, info HolderInfo) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[mint] = info
}

// Fail makes fetches for a mint return err. A nil err clears the failure.
func (f *FakeSource) Fail(mint string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err == nil {
		delete(f.errs, mint)
		return
	}
	f.errs[mint] = err
}

// Calls returns the number of Fetch invocations.
func (f *FakeSource) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// Compile-time interface check.
var _ Source = (*FakeSource)(nil)

// Fetch returns the configured data, error, or ErrNotFound.
func (f *FakeSource) Fetch(ctx context.Context, mint string) (HolderInfo, error) {
	f.mu.Lock()
	f.calls++
	block := f.Block
	err, hasErr := f.errs[mint]
	info, ok := f.data[mint]
	f.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return HolderInfo{}, ctx.Err()
		}
	}

	if hasErr {
		return HolderInfo{}, err
	}
	if !ok {
		return HolderInfo{}, ErrNotFound
	}
	return info, nil
}
