package service

import (
	"fmt"
	"strings"

	edomain "github.com/israelsanchezdev/entrepreneur-dashboard/internal/email/domain"
	rdomain "github.com/israelsanchezdev/entrepreneur-dashboard/internal/referrals/domain"
)

// placeholder stands in for absent optional fields in the message body.
const placeholder = "—"

// Compose builds the partner notification for a referral. It is pure:
// identical inputs produce a byte-identical message, and no I/O happens
// here.
func Compose(rec rdomain.Referral, toAddress, fromAddress string) edomain.Message {
	var b strings.Builder
	greeting := rec.ReferredPartner
	if strings.TrimSpace(greeting) == "" {
		greeting = "partner"
	}
	fmt.Fprintf(&b, "Hello %s,\n\n", greeting)
	b.WriteString("A new entrepreneur has been referred to you.\n\n")
	fmt.Fprintf(&b, "• Name:        %s\n", orPlaceholder(rec.EntrepreneurName))
	fmt.Fprintf(&b, "• Business:    %s\n", orPlaceholder(rec.BusinessName))
	fmt.Fprintf(&b, "• Date:        %s\n", formatDate(rec))
	fmt.Fprintf(&b, "• Initials:    %s\n", orPlaceholder(rec.Initials))
	fmt.Fprintf(&b, "• Stage:       %s\n", orPlaceholder(string(rec.Stage)))
	fmt.Fprintf(&b, "• Notes:       %s\n", orPlaceholder(rec.Notes))
	b.WriteString("\nPlease follow up with them at your earliest convenience.\n\n")
	b.WriteString("Thank you,\nThe Founder Tracker Team\n")

	return edomain.Message{
		From:          fromAddress,
		To:            toAddress,
		Subject:       fmt.Sprintf("New Entrepreneur Referral: %s", rec.EntrepreneurName),
		Text:          b.String(),
		CorrelationID: rec.ID.String(),
	}
}

func orPlaceholder(s string) string {
	if strings.TrimSpace(s) == "" {
		return placeholder
	}
	return s
}

func formatDate(rec rdomain.Referral) string {
	if rec.ContactDate == nil {
		return placeholder
	}
	return rec.ContactDate.Format("2006-01-02")
}
