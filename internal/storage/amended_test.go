package storage

import (
	"errors"
	"os"
	"testing"
)

func TestAmendedSlot_emptyAtStart(t *testing.T) {
	slot := NewAmendedSlot(t.TempDir())
	if _, err := slot.Latest(); !errors.Is(err, ErrNoAmended) {
		t.Errorf("expected ErrNoAmended, got %v", err)
	}
}

func TestAmendedSlot_saveAndLatest(t *testing.T) {
	slot := NewAmendedSlot(t.TempDir())
	path, err := slot.Save("amended contract body")
	if err != nil {
		t.Fatal(err)
	}
	latest, err := slot.Latest()
	if err != nil {
		t.Fatal(err)
	}
	if latest != path {
		t.Errorf("latest = %q, want %q", latest, path)
	}
	data, err := os.ReadFile(latest)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "amended contract body" {
		t.Errorf("unexpected content: %q", data)
	}
}

func TestAmendedSlot_lastWriterWins(t *testing.T) {
	slot := NewAmendedSlot(t.TempDir())
	first, err := slot.Save("first")
	if err != nil {
		t.Fatal(err)
	}
	second, err := slot.Save("second")
	if err != nil {
		t.Fatal(err)
	}
	latest, err := slot.Latest()
	if err != nil {
		t.Fatal(err)
	}
	if latest != second {
		t.Errorf("latest = %q, want %q", latest, second)
	}
	if _, err := os.Stat(first); !os.IsNotExist(err) {
		t.Errorf("previous amended file should be removed: %v", err)
	}
}

func TestAmendedSlot_staleFileRemoved(t *testing.T) {
	slot := NewAmendedSlot(t.TempDir())
	path, err := slot.Save("body")
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}
	if _, err := slot.Latest(); !errors.Is(err, ErrNoAmended) {
		t.Errorf("expected ErrNoAmended for removed file, got %v", err)
	}
}
