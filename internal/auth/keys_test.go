package auth

import (
	"context"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestGenerateAndParseAPIKey(t *testing.T) {
	id, raw, hash, err := GenerateAPIKey("test")
	if err != nil {
		t.Fatalf("GenerateAPIKey failed: %v", err)
	}
	if id == "" || raw == "" {
		t.Fatal("Expected non-empty id and raw key")
	}
	if !strings.HasPrefix(raw, "ae_test_") {
		t.Fatalf("Unexpected prefix: %s", raw)
	}

	env, parsedID, secret, ok := ParseAPIKey(raw)
	if !ok {
		t.Fatal("ParseAPIKey failed")
	}
	if env != "test" || parsedID != id || secret == "" {
		t.Fatalf("Bad parse: env=%s id=%s secret=%s", env, parsedID, secret)
	}

	if err := bcrypt.CompareHashAndPassword(hash, []byte(secret)); err != nil {
		t.Errorf("Hash does not match secret: %v", err)
	}
}

func TestParseAPIKeyRejectsMalformed(t *testing.T) {
	for _, raw := range []string{
		"",
		"ae_live_only3parts",
		"sc_live_abc_def",
		"ae_live_abc_def_extra",
	} {
		if _, _, _, ok := ParseAPIKey(raw); ok {
			t.Errorf("Expected parse failure for %q", raw)
		}
	}
}

func TestPrincipalContextRoundTrip(t *testing.T) {
	p := &Principal{AccountID: "acc_1", APIKeyID: "key_1", PlanCode: "pro", ClientType: "human"}

	ctx := WithPrincipal(context.Background(), p)
	got := GetPrincipal(ctx)
	if got == nil || got.AccountID != "acc_1" || got.PlanCode != "pro" {
		t.Errorf("Unexpected principal %+v", got)
	}

	if GetPrincipal(context.Background()) != nil {
		t.Error("Expected nil principal on fresh context")
	}
}
