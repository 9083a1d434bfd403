/*
Package builders provides test fixture builders for creating payment
gateway domain entities.

The builders implement the Builder pattern to provide a fluent interface for
constructing test data with sensible defaults that can be overridden as needed.

# Benefits

  - Reduces test setup boilerplate
  - Provides consistent test data across test suites
  - Makes test intent clearer by showing only what's relevant to each test
  - Easy to maintain when domain entities change

# Usage

Basic usage with defaults:

	p := builders.NewPayment().Build()
	// Creates a Payment in StatusInit with sensible defaults

Override specific fields:

	p := builders.NewPayment().
		WithID("payment-123").
		WithAmount(50000).
		WithStatus(payment.StatusConfirmed).
		Build()

# Example Test

Before (manual construction):

	p := payment.Payment{
		PaymentID: "payment-1",
		Intent:    payment.Intent{MerchantKey: "m1", OrderID: "o1", Amount: 10000, Currency: "KZT"},
		Status:    payment.StatusConfirmed,
		CreatedAt: time.Now(),
	}

After (using builder):

	p := builders.NewPayment().
		WithID("payment-1").
		WithStatus(payment.StatusConfirmed).
		Build()
*/
package builders
