package jwt

import "testing"

const secret = "test_secret"

func TestIssueParseRoundtrip(t *testing.T) {
	tok, err := Issue(secret, 42, "staff@example.com", true, TypeAccess, 1)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	mc, err := ParseAuth("Bearer "+tok, secret)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if sub, _ := mc["sub"].(float64); int64(sub) != 42 {
		t.Fatalf("sub = %v, want 42", mc["sub"])
	}
	if staff, _ := mc["is_staff"].(bool); !staff {
		t.Fatal("is_staff claim lost")
	}
	if typ, _ := mc["typ"].(string); typ != TypeAccess {
		t.Fatalf("typ = %q, want access", typ)
	}
}

func TestParseRejectsWrongSecret(t *testing.T) {
	tok, err := Issue(secret, 1, "u@example.com", false, TypeAccess, 1)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := Parse(tok, "other_secret"); err == nil {
		t.Fatal("expected signature error")
	}
}

func TestParseRefreshRejectsAccessToken(t *testing.T) {
	acc, err := Issue(secret, 7, "u@example.com", false, TypeAccess, 1)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, _, _, err := ParseRefresh(acc, secret); err == nil {
		t.Fatal("access token must not pass as refresh")
	}

	ref, err := Issue(secret, 7, "u@example.com", false, TypeRefresh, 1)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	uid, email, staff, err := ParseRefresh(ref, secret)
	if err != nil {
		t.Fatalf("parse refresh: %v", err)
	}
	if uid != 7 || email != "u@example.com" || staff {
		t.Fatalf("claims = (%d, %q, %v), want (7, u@example.com, false)", uid, email, staff)
	}
}
