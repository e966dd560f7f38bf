package cli

import (
	"bytes"
	"delivery-route-builder/internal/domain"
	"strings"
	"testing"

	"github.com/fatih/color"
)

func TestRenderStatusAllComplete(t *testing.T) {
	color.NoColor = true

	rows := []domain.StatusRow{
		{Title: "02.14 Nos", Flags: domain.FlagsThrough(domain.StageDistributed)},
		{Title: "02.14 Eric", Flags: domain.FlagsThrough(domain.StageDistributed)},
		{Title: "02.14 Hank", Flags: domain.FlagsThrough(domain.StageDistributed)},
	}

	var buf bytes.Buffer
	renderStatus(&buf, rows, domain.StageDistributed)
	out := buf.String()

	if !strings.Contains(out, "Plans attempted: 3, initialized: 3, with stops: 3, optimized: 3, distributed: 3") {
		t.Fatalf("missing summary line:\n%s", out)
	}
	if strings.Contains(out, "incomplete") {
		t.Fatalf("unexpected incomplete line:\n%s", out)
	}

	lines := strings.Split(out, "\n")
	if !strings.HasPrefix(lines[0], "title     ") {
		t.Fatalf("header = %q", lines[0])
	}
	if got := strings.Count(lines[1], "yes"); got != 5 {
		t.Fatalf("row 1 yes count = %d, want 5: %q", got, lines[1])
	}
}

func TestRenderStatusIncomplete(t *testing.T) {
	color.NoColor = true

	rows := []domain.StatusRow{
		{Title: "02.14 Eric", Flags: domain.FlagsThrough(domain.StageOptimized)},
		{Title: "02.14 Hank", Flags: domain.FlagsThrough(domain.StageWritable), HaltReason: "upload stops: boom"},
	}

	var buf bytes.Buffer
	renderStatus(&buf, rows, domain.StageOptimized)
	out := buf.String()

	if !strings.Contains(out, "1 of 2 plans incomplete: 02.14 Hank") {
		t.Fatalf("missing incomplete line:\n%s", out)
	}
	if !strings.Contains(out, "(upload stops: boom)") {
		t.Fatalf("missing halt reason:\n%s", out)
	}
	if !strings.Contains(out, "with stops: 1, optimized: 1, distributed: 0") {
		t.Fatalf("unexpected summary:\n%s", out)
	}
}
