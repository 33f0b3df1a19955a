// Package connectors defines outbound clients forwarding engine output to
// external services.
package connectors

import (
	"github.com/matveld/bms/auth"
	"github.com/matveld/bms/core/health"
)

// ErrIncompatibleOption formats the error for an option applied to the
// wrong client type: option name, client id.
const ErrIncompatibleOption = "option %s does not apply to client %s"

// AlertClient pushes maintenance alerts to an external endpoint.
type AlertClient interface {
	Forward(authClient *auth.ClientCred, alerts []health.Alert, opts ...Option) error
}

// Option configures a client before a Forward call.
type Option func(AlertClient) error
