package capture

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestPreview_PublishAndLatest(t *testing.T) {
	p := NewPreview()

	if data, seq := p.Latest(); data != nil || seq != 0 {
		t.Fatalf("new preview should be empty, got %d bytes seq %d", len(data), seq)
	}

	p.Publish([]byte("one"))
	p.Publish([]byte("two"))

	data, seq := p.Latest()
	if string(data) != "two" || seq != 2 {
		t.Errorf("Latest() = %q seq %d, want \"two\" seq 2", data, seq)
	}
}

func TestPreview_NextWaitsForNewImage(t *testing.T) {
	p := NewPreview()
	p.Publish([]byte("old"))

	got := make(chan string, 1)
	go func() {
		data, _, err := p.Next(context.Background(), 1)
		if err != nil {
			got <- err.Error()
			return
		}
		got <- string(data)
	}()

	select {
	case v := <-got:
		t.Fatalf("Next returned %q before a new image was published", v)
	case <-time.After(50 * time.Millisecond):
	}

	p.Publish([]byte("new"))

	select {
	case v := <-got:
		if v != "new" {
			t.Errorf("Next() = %q, want \"new\"", v)
		}
	case <-time.After(time.Second):
		t.Fatal("Next did not return after Publish")
	}
}

func TestPreview_NextReturnsImmediatelyWhenBehind(t *testing.T) {
	p := NewPreview()
	p.Publish([]byte("a"))

	data, seq, err := p.Next(context.Background(), 0)
	if err != nil {
		t.Fatalf("Next() error = %v", err)
	}
	if string(data) != "a" || seq != 1 {
		t.Errorf("Next() = %q seq %d", data, seq)
	}
}

func TestPreview_NextHonoursContext(t *testing.T) {
	p := NewPreview()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if _, _, err := p.Next(ctx, 0); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Next() error = %v, want deadline exceeded", err)
	}
}

func TestPreview_Update(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	p := NewPreview()
	if err := p.Update(nil); !errors.Is(err, ErrEmptyFrame) {
		t.Errorf("Update(nil) error = %v, want ErrEmptyFrame", err)
	}

	frame := solidFrame(64)
	defer frame.Close()

	if err := p.Update(&frame); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	data, seq := p.Latest()
	if seq != 1 || len(data) < 4 {
		t.Fatalf("unexpected preview: %d bytes seq %d", len(data), seq)
	}
	// JPEG SOI marker
	if data[0] != 0xFF || data[1] != 0xD8 {
		t.Errorf("preview is not a JPEG: % x", data[:4])
	}
}
