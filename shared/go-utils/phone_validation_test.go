package utils

import (
	"context"
	"testing"
)

func TestValidatePhoneNumberLocal(t *testing.T) {
	ok, err := ValidatePhoneNumber(context.Background(), "+919876543210", false, nil)
	if err != nil || !ok {
		t.Fatalf("expected +919876543210 to be valid, got ok=%v err=%v", ok, err)
	}

	for _, bad := range []string{"12345", "919876543210", "+0123456789", "+91 98765 43210", ""} {
		ok, err := ValidatePhoneNumber(context.Background(), bad, false, nil)
		if err != nil {
			t.Fatalf("unexpected error for %q: %v", bad, err)
		}
		if ok {
			t.Fatalf("expected %q to be rejected", bad)
		}
	}
}
