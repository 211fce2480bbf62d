package utils

import (
	"crypto/rand"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const idAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

func randomToken(n int) string {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		// time-derived fallback, uniqueness still holds per millisecond
		return strings.ToUpper(strconv.FormatInt(time.Now().UnixNano(), 36))[:n]
	}
	for i, b := range buf {
		buf[i] = idAlphabet[int(b)%len(idAlphabet)]
	}
	return string(buf)
}

// GenerateChallanNumber returns a citation number of the form HB<YY><MM><6 random>.
func GenerateChallanNumber() string {
	now := time.Now()
	return fmt.Sprintf("HB%02d%02d%s", now.Year()%100, int(now.Month()), randomToken(6))
}

// GenerateTransactionID returns an internal payment transaction id,
// TXN + base36 timestamp + random suffix.
func GenerateTransactionID() string {
	ts := strings.ToUpper(strconv.FormatInt(time.Now().UnixMilli(), 36))
	return "TXN" + ts + randomToken(8)
}

// ReceiptNumber derives the receipt number issued on payment completion.
func ReceiptNumber(transactionID string) string {
	return "RCP-" + transactionID
}
