package cache

import "testing"

func TestRunMemo_GetSet(t *testing.T) {
	m := NewRunMemo[string]()

	if _, ok := m.Get("missing"); ok {
		t.Error("Expected miss for unknown key")
	}

	key := MemoKey("web_page", "https://example.com")
	m.Set(key, "Web Content from https://example.com")

	got, ok := m.Get(key)
	if !ok {
		t.Fatal("Expected hit after Set")
	}
	if got != "Web Content from https://example.com" {
		t.Errorf("Expected stored value, got %q", got)
	}

	hits, misses := m.Stats()
	if hits != 1 || misses != 1 {
		t.Errorf("Expected 1 hit and 1 miss, got %d/%d", hits, misses)
	}
}

func TestRunMemo_Flush(t *testing.T) {
	m := NewRunMemo[int]()
	m.Set("a", 1)
	m.Set("b", 2)

	if m.Len() != 2 {
		t.Errorf("Expected 2 entries, got %d", m.Len())
	}

	m.Flush()
	if m.Len() != 0 {
		t.Errorf("Expected empty memo after Flush, got %d", m.Len())
	}
}

func TestMemoKey(t *testing.T) {
	a := MemoKey("web_page", "https://example.com")
	b := MemoKey("video_transcript", "https://example.com")
	c := MemoKey("web_page", "https://example.com")

	if a == b {
		t.Error("Expected different keys for different tools")
	}
	if a != c {
		t.Error("Expected identical keys for identical invocations")
	}
}
