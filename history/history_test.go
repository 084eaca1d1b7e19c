package history

import "testing"

func TestFieldForPlatform(t *testing.T) {
	cases := map[string]string{
		"whatsapp": "whatsapp_id",
		"telegram": "telegram_id",
		"website":  "website_id",
		"api":      "api_id",
		"":         "api_id",
		"unknown":  "api_id",
	}
	for platform, want := range cases {
		if got := FieldForPlatform(platform); got != want {
			t.Errorf("FieldForPlatform(%q) = %q, want %q", platform, got, want)
		}
	}
}

func TestPlatformFieldsOrder(t *testing.T) {
	want := []string{"whatsapp_id", "telegram_id", "website_id", "api_id"}
	if len(PlatformFields) != len(want) {
		t.Fatalf("PlatformFields has %d entries", len(PlatformFields))
	}
	for i, f := range want {
		if PlatformFields[i] != f {
			t.Errorf("PlatformFields[%d] = %q, want %q", i, PlatformFields[i], f)
		}
	}
}
