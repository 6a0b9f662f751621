// Package notification sends the out-of-band messages the registration flow
// depends on. The Sender interface keeps transport details out of domain
// code; production uses SMTP, development logs the message instead.
package notification

import "context"

//go:generate mockgen -source=notification.go -destination=mocks/notification_mock.go -package=mocks

// Sender delivers a plain-text message to a recipient address.
type Sender interface {
	Send(ctx context.Context, to, subject, body string) error
}
