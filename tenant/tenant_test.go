package tenant_test

import (
	"testing"

	"github.com/recallhq/recall-go-sdk/tenant"
)

func TestKeyID_Sanitization(t *testing.T) {
	tests := []struct {
		platform string
		external string
		want     string
	}{
		{"whatsapp", "+1555", "whatsapp__1555"},
		{"telegram", "user-42", "telegram_user_42"},
		{"website", "jane@example.com", "website_jane_at_example_dot_com"},
		{"api", "key.v2", "api_key_dot_v2"},
	}

	for _, tt := range tests {
		got := tenant.NewKey(tt.platform, tt.external).ID()
		if got != tt.want {
			t.Errorf("ID(%q, %q) = %q, want %q", tt.platform, tt.external, got, tt.want)
		}
	}
}

func TestKeyID_Idempotent(t *testing.T) {
	k := tenant.NewKey("whatsapp", "+1555 weird!id")
	once := k.ID()
	twice := tenant.NewKey("", once).ID()
	// Re-sanitizing an already-clean id must not change any character
	// beyond the platform prefix added by the second derivation.
	if want := "whatsapp_" + once; twice != want {
		t.Errorf("re-derivation changed id: got %q, want %q", twice, want)
	}
}

func TestKeyID_DistinctTenantsDoNotCollide(t *testing.T) {
	a := tenant.NewKey("whatsapp", "+1555").ID()
	b := tenant.NewKey("whatsapp", "+1556").ID()
	c := tenant.NewKey("telegram", "+1555").ID()
	if a == b || a == c || b == c {
		t.Errorf("tenant ids collided: %q %q %q", a, b, c)
	}
}

func TestCollectionNames(t *testing.T) {
	k := tenant.NewKey("whatsapp", "+1555")
	if got := k.ConversationCollection(); got != "conv_whatsapp__1555" {
		t.Errorf("ConversationCollection() = %q", got)
	}
	if got := k.DocumentCollection(); got != "docs_whatsapp__1555" {
		t.Errorf("DocumentCollection() = %q", got)
	}
}

func TestKeyID_StableAcrossCalls(t *testing.T) {
	k := tenant.NewKey("website", "jane@example.com")
	if k.ID() != k.ID() {
		t.Error("ID() is not deterministic")
	}
}
