package testfixtures

import "testing"

func TestIDGenerator_Sequence(t *testing.T) {
	t.Parallel()

	gen := NewIDGenerator("wallet")
	if first, second := gen.Next(), gen.Next(); first != "wallet-1" || second != "wallet-2" {
		t.Fatalf("unexpected identifiers: %q, %q", first, second)
	}
}

func TestIDGenerator_Reset(t *testing.T) {
	t.Parallel()

	gen := NewIDGenerator("order")
	_ = gen.Next()
	gen.Reset()
	if next := gen.Next(); next != "order-1" {
		t.Fatalf("expected order-1 after reset, got %q", next)
	}
}

func TestIDGenerator_EmptyPrefixDefaults(t *testing.T) {
	t.Parallel()

	gen := NewIDGenerator("")
	if next := gen.Next(); next != "id-1" {
		t.Fatalf("expected id-1, got %q", next)
	}
}
