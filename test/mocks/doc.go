// Package mocks provides hand-written mock implementations of the payment
// gateway's collaborator interfaces (payment.BankClient, payment.Notifier,
// payment.MerchantLookup), for unit and integration tests that don't need
// the paymentmem in-memory store's full persistence behavior.
//
// Usage:
//
//	import "payment-gateway/test/mocks"
//
//	bank := mocks.NewBankClient()
//	bank.RequestPaymentCode = payment.BankAuthRequired
package mocks
