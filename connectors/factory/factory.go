package factory

import (
	"fmt"

	"github.com/matveld/bms/connectors"
	"github.com/matveld/bms/connectors/clients/maintenance"
)

const (
	IDMaintenance = "maintenance"
)

var (
	errUnknownClient = "unknown connector id: %s"
)

func NewAlertClient(id string) (connectors.AlertClient, error) {
	switch id {
	case IDMaintenance:
		return &maintenance.Client{}, nil
	default:
		return nil, fmt.Errorf(errUnknownClient, id)
	}
}
