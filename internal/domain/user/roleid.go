package user

import (
	"crypto/rand"
	"fmt"
	"time"
)

// Role identifier prefixes.
const (
	PatientIDPrefix = "PAT"
	DoctorIDPrefix  = "DOC"
)

const roleIDRandomChars = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// newRoleID builds a role identifier: prefix, the last six digits of the
// current epoch milliseconds, and three random uppercase alphanumerics.
// Collisions are possible; callers rely on the store's uniqueness constraint
// and retry with a fresh ID on conflict.
func newRoleID(prefix string) string {
	millis := fmt.Sprintf("%d", time.Now().UnixMilli())
	if len(millis) > 6 {
		millis = millis[len(millis)-6:]
	}

	buf := make([]byte, 3)
	if _, err := rand.Read(buf); err != nil {
		// Fall back to a time-derived suffix; uniqueness is still backstopped
		// by the database constraint.
		return fmt.Sprintf("%s%s%03d", prefix, millis, time.Now().Nanosecond()%1000)
	}
	for i, b := range buf {
		buf[i] = roleIDRandomChars[int(b)%len(roleIDRandomChars)]
	}
	return prefix + millis + string(buf)
}
