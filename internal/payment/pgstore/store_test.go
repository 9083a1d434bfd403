package pgstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsUniqueViolation_MatchesPgUniqueConstraintError(t *testing.T) {
	err := errorString("ERROR: duplicate key value violates unique constraint \"payments_merchant_order_live_idx\" (SQLSTATE 23505)")
	assert.True(t, isUniqueViolation(err))
}

func TestIsUniqueViolation_RejectsUnrelatedError(t *testing.T) {
	err := errorString("ERROR: connection refused")
	assert.False(t, isUniqueViolation(err))
}

type errorString string

func (e errorString) Error() string { return string(e) }
