package mqtt

import (
	"context"

	"github.com/matveld/bms/core/events"
	coremqtt "github.com/matveld/bms/core/mqtt"
	"github.com/matveld/bms/infra/logger"
	"github.com/matveld/bms/internal/eventbus"
)

// CommandBridge forwards task lifecycle events from the engine bus to the
// cell command topics. One command is published per target cell.
type CommandBridge struct {
	bus *eventbus.TypedBus[events.TaskEvent]
	cli Client
	log logger.Logger
}

// NewCommandBridge wires a task event bus to a command publisher.
func NewCommandBridge(bus *eventbus.TypedBus[events.TaskEvent], cli Client, log logger.Logger) *CommandBridge {
	if log == nil {
		log = logger.NopLogger{}
	}
	return &CommandBridge{bus: bus, cli: cli, log: log}
}

// Run consumes task events until the context is cancelled or the bus
// closes. It is meant to run in its own goroutine.
func (b *CommandBridge) Run(ctx context.Context) {
	sub := b.bus.SubscribeBuffered(64)
	defer b.bus.Unsubscribe(sub)

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-sub:
			if !ok {
				return
			}
			b.publish(ev)
		}
	}
}

func (b *CommandBridge) publish(ev events.TaskEvent) {
	for _, cellID := range ev.Task.Cells {
		cmd := coremqtt.Command{
			CellID:    cellID,
			TaskID:    ev.Task.ID,
			TaskType:  ev.Task.Type.String(),
			Action:    string(ev.Kind),
			Priority:  ev.Task.Priority.String(),
			Timestamp: ev.Time.UnixMilli(),
			TargetV:   ev.Task.Params.TargetVoltage,
			CurrentA:  ev.Task.Params.Current,
		}
		if _, err := b.cli.PublishCommand(cmd); err != nil {
			b.log.Errorf("command publish %s/%s: %v", ev.Task.ID, cellID, err)
		}
	}
}
