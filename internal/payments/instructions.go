package payments

import (
	"fmt"

	"github.com/menumesa/backend/internal/models"
)

// UPIHandles are the collection handles shown to tenants paying manually.
type UPIHandles struct {
	GPay    string `json:"gpay,omitempty"`
	PhonePe string `json:"phonepe,omitempty"`
}

// Instructions tell the tenant how to complete a manual renewal payment.
type Instructions struct {
	Method  string     `json:"method"`
	Amount  string     `json:"amount"`
	Steps   []string   `json:"steps"`
	Handles UPIHandles `json:"upi_handles,omitempty"`
}

// FormatAmount renders an amount in minor units as rupees.
func FormatAmount(amountCents int) string {
	return fmt.Sprintf("₹%.2f", float64(amountCents)/100)
}

// BuildInstructions returns payment steps for the chosen manual method.
func BuildInstructions(method string, amountCents int, handles UPIHandles) Instructions {
	amount := FormatAmount(amountCents)
	ins := Instructions{Method: method, Amount: amount}
	switch method {
	case models.PaymentMethodUPI:
		ins.Handles = handles
		ins.Steps = []string{
			"Open your UPI app (Google Pay or PhonePe).",
			fmt.Sprintf("Send %s to one of the UPI handles shown.", amount),
			"Note the UPI transaction ID from the payment receipt.",
			"Return here and confirm the payment with that transaction ID.",
		}
	case models.PaymentMethodNetBanking:
		ins.Steps = []string{
			"Log in to your bank's netbanking portal.",
			fmt.Sprintf("Transfer %s to the account details shared with you.", amount),
			"Note the transfer reference number.",
			"Return here and confirm the payment with that reference number.",
		}
	}
	return ins
}
