// Package aitest provides a scripted ai.Completer for tests.
package aitest

import (
	"context"
	"sync"
)

// Fake answers every prompt with Reply and records what it was asked.
type Fake struct {
	Reply func(prompt string) (string, error)

	mu      sync.Mutex
	prompts []string
}

// Text returns a Fake that always answers s.
func Text(s string) *Fake {
	return &Fake{Reply: func(string) (string, error) { return s, nil }}
}

// Err returns a Fake that always fails with err.
func Err(err error) *Fake {
	return &Fake{Reply: func(string) (string, error) { return "", err }}
}

func (f *Fake) Complete(_ context.Context, prompt string) (string, error) {
	f.mu.Lock()
	f.prompts = append(f.prompts, prompt)
	f.mu.Unlock()
	return f.Reply(prompt)
}

func (f *Fake) Prompts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.prompts...)
}

func (f *Fake) Calls() int {
	return len(f.Prompts())
}
