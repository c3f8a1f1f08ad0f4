package email

import (
	"context"
)

// Service delivers outbound notifications. The evaluation engine only ever
// sends; reading mailboxes is out of scope.
type Service interface {
	SendAlertNotification(ctx context.Context, to, subject, body string) error
}
