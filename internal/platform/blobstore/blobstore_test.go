package blobstore

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"
)

func TestMemoryStore_PutGet(t *testing.T) {
	s := NewMemoryStore()

	meta, err := s.Put(context.Background(), "reports/r1.txt", "text/plain", strings.NewReader("hello"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if meta.Key != "reports/r1.txt" || meta.Size != 5 || meta.ContentType != "text/plain" {
		t.Errorf("unexpected metadata: %+v", meta)
	}

	rc, got, err := s.Get(context.Background(), "reports/r1.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer rc.Close()
	body, _ := io.ReadAll(rc)
	if string(body) != "hello" {
		t.Errorf("body = %q, want hello", body)
	}
	if got.Size != 5 {
		t.Errorf("size = %d, want 5", got.Size)
	}
}

func TestMemoryStore_GetMissing(t *testing.T) {
	s := NewMemoryStore()
	_, _, err := s.Get(context.Background(), "nope")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryStore_Delete(t *testing.T) {
	s := NewMemoryStore()
	s.Put(context.Background(), "k", "text/plain", strings.NewReader("x"))
	if err := s.Delete(context.Background(), "k"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, _, err := s.Get(context.Background(), "k"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if err := s.Delete(context.Background(), "k"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("deleting a missing key should return ErrNotFound, got %v", err)
	}
}

func TestMemoryStore_PresignNotSupported(t *testing.T) {
	s := NewMemoryStore()
	_, err := s.PresignGet(context.Background(), "k", time.Hour)
	if !errors.Is(err, ErrPresignNotSupported) {
		t.Fatalf("expected ErrPresignNotSupported, got %v", err)
	}
}
