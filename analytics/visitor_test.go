package analytics

import "testing"

func TestHashVisitor(t *testing.T) {
	h1 := HashVisitor("203.0.113.9", uaChromeDesktop)
	if len(h1) != 16 {
		t.Fatalf("hash length = %d, want 16", len(h1))
	}

	if h2 := HashVisitor("203.0.113.9", uaChromeDesktop); h2 != h1 {
		t.Errorf("hash not deterministic: %q vs %q", h1, h2)
	}
	if h3 := HashVisitor("203.0.113.10", uaChromeDesktop); h3 == h1 {
		t.Error("different IPs produced the same hash")
	}
	if h4 := HashVisitor("203.0.113.9", uaFirefox); h4 == h1 {
		t.Error("different user agents produced the same hash")
	}
}
