package logger

import "strings"

// RedactEmail masks a sender address so it can appear in decision and memory
// logs without leaking the full identity.
// "vendor.billing@example.com" becomes "ve***@example.com".
// Short local parts (2 chars or fewer) are fully masked:
// "hr@example.com" becomes "***@example.com".
func RedactEmail(email string) string {
	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return "***@***"
	}
	name := parts[0]
	if len(name) > 2 {
		return name[:2] + "***@" + parts[1]
	}
	return "***@" + parts[1]
}
