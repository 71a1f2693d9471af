package cmd

import (
	"io"
	"os"
	"strings"
	"testing"

	"github.com/attendbot/attend-admin/internal/roster"
)

func captureStdout(t *testing.T, fn func()) string {
	t.Helper()

	old := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("failed to create pipe: %v", err)
	}
	os.Stdout = w

	fn()

	w.Close()
	os.Stdout = old

	out, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("failed to read captured output: %v", err)
	}
	return string(out)
}

func TestPrintRowFetchError(t *testing.T) {
	row := roster.Row{Phase: roster.PhaseEmpty, FetchErr: "backend unreachable"}

	out := captureStdout(t, func() {
		printRow(7, row)
	})

	if !strings.Contains(out, "User 7: slots unavailable (backend unreachable)") {
		t.Errorf("unexpected output: %q", out)
	}
}

func TestPrintRowNoImages(t *testing.T) {
	out := captureStdout(t, func() {
		printRow(7, roster.Row{Phase: roster.PhaseEmpty})
	})

	if !strings.Contains(out, "User 7 has no reference images.") {
		t.Errorf("unexpected output: %q", out)
	}
}

func TestPrintRowOccupiedSlots(t *testing.T) {
	row := roster.Row{
		Phase: roster.PhaseLoaded,
		Slots: []roster.Slot{
			{Index: 1, Locator: "/users/7/face/1"},
			{Index: 2, Locator: "/users/7/face/2"},
		},
	}

	out := captureStdout(t, func() {
		printRow(7, row)
	})

	if !strings.Contains(out, "/users/7/face/2") {
		t.Errorf("missing slot locator in output: %q", out)
	}
	if !strings.Contains(out, "2 of 3 slots in use") {
		t.Errorf("missing slot summary in output: %q", out)
	}
}
