package summarize

import (
	"context"
	"sync"
)

// FakeClient is a test implementation of Client.
type FakeClient struct {
	Response string
	Err      error

	mu sync.Mutex
	// LastMessages records what the most recent call was asked to summarize.
	LastMessages []Message
}

func NewFakeClient(response string) *FakeClient {
	return &FakeClient{Response: response}
}

func (c *FakeClient) Summarize(_ context.Context, messages []Message) (string, error) {
	c.mu.Lock()
	c.LastMessages = messages
	c.mu.Unlock()
	if c.Err != nil {
		return "", c.Err
	}
	return c.Response, nil
}
