// Package notify delivers booking and contact notifications to clients and to
// the atelier.
package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"dresscutur/backend/internal/domain"
)

type Notifier interface {
	BookingReceived(ctx context.Context, ev domain.Event) error
	ContactReceived(ctx context.Context, msg domain.ContactMessage) error
}

type Noop struct{}

func (Noop) BookingReceived(context.Context, domain.Event) error { return nil }

func (Noop) ContactReceived(context.Context, domain.ContactMessage) error { return nil }

// Multi fans out to every notifier and joins their errors.
type Multi []Notifier

func (m Multi) BookingReceived(ctx context.Context, ev domain.Event) error {
	var errs []error
	for _, n := range m {
		if err := n.BookingReceived(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m Multi) ContactReceived(ctx context.Context, msg domain.ContactMessage) error {
	var errs []error
	for _, n := range m {
		if err := n.ContactReceived(ctx, msg); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// New returns n unchanged when there is exactly one notifier, Noop when there
// are none, Multi otherwise.
func New(ns ...Notifier) Notifier {
	switch len(ns) {
	case 0:
		return Noop{}
	case 1:
		return ns[0]
	}
	return Multi(ns)
}

func describeSlot(ev domain.Event, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	start := ev.StartTime.In(loc)
	if ev.AllDay {
		return start.Format("Monday 2 January 2006") + " (all day)"
	}
	return fmt.Sprintf("%s at %d:%02d", start.Format("Monday 2 January 2006"), start.Hour(), start.Minute())
}

func bookingClientText(ev domain.Event, loc *time.Location) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hello %s,\n\n", ev.ClientName)
	fmt.Fprintf(&b, "We received your appointment request for %s.\n", describeSlot(ev, loc))
	b.WriteString("We will confirm it shortly.\n\nDressCutur")
	return b.String()
}

func bookingAtelierText(ev domain.Event, loc *time.Location) string {
	var b strings.Builder
	fmt.Fprintf(&b, "New booking request: %s\n", describeSlot(ev, loc))
	fmt.Fprintf(&b, "Client: %s\n", ev.ClientName)
	if ev.ClientEmail != "" {
		fmt.Fprintf(&b, "Email: %s\n", ev.ClientEmail)
	}
	if ev.ClientPhone != "" {
		fmt.Fprintf(&b, "Phone: %s\n", ev.ClientPhone)
	}
	fmt.Fprintf(&b, "Service: %s\n", ev.Category)
	if ev.Notes != "" {
		fmt.Fprintf(&b, "Notes: %s\n", ev.Notes)
	}
	return b.String()
}

func contactAtelierText(msg domain.ContactMessage) string {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s <%s>\n", msg.Name, msg.Email)
	if msg.Phone != "" {
		fmt.Fprintf(&b, "Phone: %s\n", msg.Phone)
	}
	b.WriteString("\n")
	b.WriteString(msg.Message)
	return b.String()
}
