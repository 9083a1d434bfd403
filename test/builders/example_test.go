package builders_test

import (
	"fmt"

	"payment-gateway/internal/payment"
	"payment-gateway/test/builders"
)

// Example demonstrates basic builder usage
func Example() {
	p := builders.NewPayment().Build()

	fmt.Println("Status:", p.Status)
	fmt.Println("Amount:", p.Intent.Amount)

	// Output:
	// Status: INIT
	// Amount: 10000
}

// ExamplePaymentBuilder demonstrates creating a payment with defaults
func ExamplePaymentBuilder() {
	p := builders.NewPayment().Build()

	fmt.Println("Default status:", p.Status)
	fmt.Println("Default currency:", p.Intent.Currency)
	fmt.Println("Default amount:", p.Intent.Amount)

	// Output:
	// Default status: INIT
	// Default currency: KZT
	// Default amount: 10000
}

// ExamplePaymentBuilder_withCustomValues shows customizing payment fields
func ExamplePaymentBuilder_withCustomValues() {
	p := builders.NewPayment().
		WithID("pay-123").
		WithAmount(50000).
		WithMerchantKey("merchant-456").
		Build()

	fmt.Println("ID:", p.PaymentID)
	fmt.Println("Amount:", p.Intent.Amount)
	fmt.Println("Merchant key:", p.Intent.MerchantKey)

	// Output:
	// ID: pay-123
	// Amount: 50000
	// Merchant key: merchant-456
}

// ExamplePaymentBuilder_WithConfirmedStatus demonstrates a confirmed payment
func ExamplePaymentBuilder_WithConfirmedStatus() {
	p := builders.NewPayment().
		WithID("pay-confirmed").
		WithConfirmedStatus().
		Build()

	fmt.Println("Status:", p.Status)

	// Output:
	// Status: CONFIRMED
}

// ExamplePaymentBuilder_WithCancelledStatus demonstrates a cancelled payment
func ExamplePaymentBuilder_WithCancelledStatus() {
	p := builders.NewPayment().
		WithID("pay-cancelled").
		WithCancelledStatus().
		Build()

	fmt.Println("Status:", p.Status)

	// Output:
	// Status: CANCELLED
}

// ExamplePaymentBuilder_chainedMethods demonstrates fluent interface
func ExamplePaymentBuilder_chainedMethods() {
	p := builders.NewPayment().
		WithID("pay-789").
		WithAmount(150000).
		WithCurrency("USD").
		WithPayType(payment.PayTypeTwoStage).
		WithCardFingerprint("fp-abc123").
		WithConfirmedStatus().
		Build()

	fmt.Println("Pay type:", p.Intent.PayType)
	fmt.Println("Card fingerprint:", p.CardFingerprint)
	fmt.Println("Status:", p.Status)

	// Output:
	// Pay type: two-stage
	// Card fingerprint: fp-abc123
	// Status: CONFIRMED
}

// ExampleHistoryEntryBuilder demonstrates history entry builder usage
func ExampleHistoryEntryBuilder() {
	entry := builders.NewHistoryEntry().
		WithPaymentID("pay-123").
		WithTransition(payment.StatusAuthorizing, payment.StatusAuthorized).
		WithActor("bank").
		Build()

	fmt.Println("From:", entry.FromStatus)
	fmt.Println("To:", entry.ToStatus)
	fmt.Println("Actor:", entry.Actor)

	// Output:
	// From: AUTHORIZING
	// To: AUTHORIZED
	// Actor: bank
}

// Example_testScenario demonstrates using builders in test scenarios
func Example_testScenario() {
	initPayment := builders.NewPayment().
		WithMerchantKey("merchant-1").
		WithAmount(15000).
		Build()

	fmt.Println("Init payment:", initPayment.Status)

	confirmedPayment := builders.NewPayment().
		WithID(initPayment.PaymentID).
		WithMerchantKey("merchant-1").
		WithAmount(15000).
		WithConfirmedStatus().
		Build()

	fmt.Println("Confirmed payment:", confirmedPayment.Status)
	fmt.Println("Same amount:", initPayment.Intent.Amount == confirmedPayment.Intent.Amount)

	// Output:
	// Init payment: INIT
	// Confirmed payment: CONFIRMED
	// Same amount: true
}

// Example_builderPatternBenefits demonstrates why builders are useful
func Example_builderPatternBenefits() {
	// Without a builder, every field not relevant to the test still needs a
	// value. With one, only what the test cares about needs overriding.
	p := builders.NewPayment().
		WithAmount(25000).
		Build()

	fmt.Println("Amount customized:", p.Intent.Amount == 25000)
	fmt.Println("Has default ID:", p.PaymentID != "")
	fmt.Println("Has default currency:", p.Intent.Currency != "")

	// Output:
	// Amount customized: true
	// Has default ID: true
	// Has default currency: true
}
