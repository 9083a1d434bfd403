package payment

import (
	"encoding/base32"
	"strings"
	"time"

	"github.com/google/uuid"
)

// UUIDIdGen produces a 20-character payment_id: an 8-character big-endian
// millisecond timestamp prefix (base32, so lexical order tracks creation
// order) followed by 12 characters of uuid-derived entropy.
type UUIDIdGen struct{}

func NewIDGen() *UUIDIdGen { return &UUIDIdGen{} }

var b32 = base32.NewEncoding("0123456789ABCDEFGHIJKLMNOPQRSTUV").WithPadding(base32.NoPadding)

func (UUIDIdGen) NewPaymentID() string {
	now := time.Now().UnixMilli()
	tsBuf := make([]byte, 5)
	for i := 4; i >= 0; i-- {
		tsBuf[i] = byte(now & 0xff)
		now >>= 8
	}
	ts := strings.ToUpper(b32.EncodeToString(tsBuf))[:8]

	entropy := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:12]
	return ts + entropy
}
