package maintenance

import (
	"fmt"
	"time"

	"github.com/matveld/bms/connectors"
)

// WithEndpoint sets the URL the alerts are posted to.
func WithEndpoint(url string) connectors.Option {
	return func(c connectors.AlertClient) error {
		if m, ok := c.(*Client); ok {
			m.endpoint = url
			return nil
		}
		return fmt.Errorf(connectors.ErrIncompatibleOption, "WithEndpoint", "maintenance")
	}
}

// WithTimeout overrides the default request timeout.
func WithTimeout(d time.Duration) connectors.Option {
	return func(c connectors.AlertClient) error {
		if m, ok := c.(*Client); ok {
			m.timeout = d
			return nil
		}
		return fmt.Errorf(connectors.ErrIncompatibleOption, "WithTimeout", "maintenance")
	}
}
