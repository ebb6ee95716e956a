package payments

import (
	"strings"
	"testing"

	"github.com/menumesa/backend/internal/models"
)

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		cents int
		want  string
	}{
		{cents: 50000, want: "₹500.00"},
		{cents: 99, want: "₹0.99"},
		{cents: 123456, want: "₹1234.56"},
	}
	for _, tt := range tests {
		if got := FormatAmount(tt.cents); got != tt.want {
			t.Fatalf("FormatAmount(%d) = %q, want %q", tt.cents, got, tt.want)
		}
	}
}

func TestBuildInstructions(t *testing.T) {
	handles := UPIHandles{GPay: "menumesa@okaxis", PhonePe: "menumesa@ybl"}

	upi := BuildInstructions(models.PaymentMethodUPI, 50000, handles)
	if upi.Handles != handles {
		t.Fatalf("UPI instructions must carry the collection handles")
	}
	if len(upi.Steps) == 0 || !strings.Contains(upi.Steps[1], "₹500.00") {
		t.Fatalf("UPI steps missing formatted amount: %v", upi.Steps)
	}

	nb := BuildInstructions(models.PaymentMethodNetBanking, 50000, handles)
	if nb.Handles != (UPIHandles{}) {
		t.Fatalf("netbanking instructions must not include UPI handles")
	}
	if len(nb.Steps) == 0 {
		t.Fatalf("netbanking steps empty")
	}
}
