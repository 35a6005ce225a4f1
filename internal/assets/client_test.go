package assets

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"
)

func TestPublicIDFromURL(t *testing.T) {
	cases := []struct {
		url      string
		wantID   string
		wantType string
		wantErr  bool
	}{
		{
			url:      "https://res.example.com/demo/image/upload/v1712345678/atelier/projects/villa.jpg",
			wantID:   "atelier/projects/villa",
			wantType: "image",
		},
		{
			url:      "https://res.example.com/demo/raw/upload/atelier/inquiries/brief.pdf",
			wantID:   "atelier/inquiries/brief",
			wantType: "raw",
		},
		{
			url:      "https://res.example.com/demo/image/upload/v99/cover.png",
			wantID:   "cover",
			wantType: "image",
		},
		{url: "https://res.example.com/demo/image/noupload/x.jpg", wantErr: true},
		{url: "https://res.example.com/demo/image/upload/", wantErr: true},
	}
	for _, c := range cases {
		id, rt, err := PublicIDFromURL(c.url)
		if c.wantErr {
			if err == nil {
				t.Errorf("PublicIDFromURL(%q): expected error, got %q", c.url, id)
			}
			continue
		}
		if err != nil {
			t.Errorf("PublicIDFromURL(%q): %v", c.url, err)
			continue
		}
		if id != c.wantID || rt != c.wantType {
			t.Errorf("PublicIDFromURL(%q) = (%q, %q); want (%q, %q)", c.url, id, rt, c.wantID, c.wantType)
		}
	}
}

func TestSign_Deterministic(t *testing.T) {
	c := &Client{apiSecret: "shhh"}
	a := c.sign(map[string]string{"timestamp": "100", "folder": "atelier"})
	b := c.sign(map[string]string{"folder": "atelier", "timestamp": "100"})
	if a != b {
		t.Fatalf("sign not order-independent: %q vs %q", a, b)
	}
	if a == c.sign(map[string]string{"folder": "atelier", "timestamp": "101"}) {
		t.Fatal("sign ignored parameter change")
	}
}

// fakeDestroyer records destroy calls and returns a configured error.
type fakeDestroyer struct {
	mu    sync.Mutex
	calls []string
	err   error
}

func (f *fakeDestroyer) Destroy(ctx context.Context, url string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, url)
	return f.err
}

func TestCleanup_AttemptsAllAndSwallowsFailures(t *testing.T) {
	fd := &fakeDestroyer{err: errors.New("boom")}
	c := NewCleanup(fd, zerolog.Nop())

	c.Enqueue("https://a.example/one.jpg", "", "https://a.example/two.jpg")
	c.Wait()

	fd.mu.Lock()
	defer fd.mu.Unlock()
	if len(fd.calls) != 2 {
		t.Fatalf("destroy calls = %d; want 2 (empty URL skipped, failures swallowed)", len(fd.calls))
	}
}

func TestCleanup_NotFoundIsSuccess(t *testing.T) {
	fd := &fakeDestroyer{err: ErrNotFound}
	c := NewCleanup(fd, zerolog.Nop())
	c.Enqueue("https://a.example/gone.jpg")
	c.Wait() // must not panic or block
}
