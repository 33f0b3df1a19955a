// Package events defines the engine events emitted on the event bus.
//
// Available event types:
//   - CellEvent: cell registered, updated, removed or reset
//   - TaskEvent: task lifecycle change
//   - BatchEvent: bulk operation applied to the fleet
//   - EmergencyEvent: emergency shutdown or restart
//   - AlertEvent: maintenance alert raised by the health scorer
package events
