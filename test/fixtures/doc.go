// Package fixtures provides ready-made payment.Payment values for tests that
// need a realistic aggregate without constructing one field by field.
//
// Functions named after a status (Confirmed(), Cancelled()) return a payment
// already settled into that state; Expired() returns a NEW payment whose
// deadline has passed, not yet swept. PaymentsList returns a mixed
// batch for list/pagination tests, and ForCreate returns a payment shaped for
// a repository Create call (no history, no terminal fields set).
//
// Usage:
//
//	import "payment-gateway/test/fixtures"
//
//	p := fixtures.Confirmed()
//	all := fixtures.PaymentsList()
package fixtures
