package nlp

import (
	"testing"

	"kirana-service/internal/models"
)

func TestParseBatchMultiLine(t *testing.T) {
	cmds, ok := ParseBatch("8901000000001 +10\n8901000000002 -3\n\n8901000000003 +1.5")
	if !ok {
		t.Fatal("expected a batch")
	}
	if len(cmds) != 3 {
		t.Fatalf("got %d commands, want 3", len(cmds))
	}
	if cmds[0].Action != models.ActionAddStock || cmds[0].Quantity != 10 {
		t.Errorf("line 1: got %s %g", cmds[0].Action, cmds[0].Quantity)
	}
	if cmds[1].Action != models.ActionReduceStock || cmds[1].Quantity != 3 {
		t.Errorf("line 2: got %s %g", cmds[1].Action, cmds[1].Quantity)
	}
	if cmds[2].Action != models.ActionAddStock || cmds[2].Quantity != 1.5 {
		t.Errorf("line 3: got %s %g", cmds[2].Action, cmds[2].Quantity)
	}
	if cmds[1].ProductName != "8901000000002" {
		t.Errorf("line 2 barcode = %q", cmds[1].ProductName)
	}
}

func TestParseBatchSingleLineIsNotABatch(t *testing.T) {
	if _, ok := ParseBatch("8901000000001 +10"); ok {
		t.Fatal("a single line must fall through to the classifier")
	}
}

func TestParseBatchAllOrNothing(t *testing.T) {
	bad := []string{
		"8901000000001 +10\nnot a barcode line",
		"8901000000001 +10\n8901000000002 5",  // missing sign
		"8901000000001 +10\n8901000000002 +0", // zero delta
		"8901000000001 +10\n123 -2",           // barcode too short
	}
	for _, text := range bad {
		if _, ok := ParseBatch(text); ok {
			t.Errorf("ParseBatch(%q) accepted a bad line", text)
		}
	}
}
