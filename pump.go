package duckclient

import "sync/atomic"

// PumpState is the lifecycle state of a receive or transmit pump.
type PumpState int32

const (
	StateConnecting PumpState = iota
	StateRunning
	StateStopped
)

func (s PumpState) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateRunning:
		return "running"
	case StateStopped:
		return "stopped"
	default:
		return "invalid"
	}
}

type pumpState struct {
	v atomic.Int32
}

func (p *pumpState) load() PumpState   { return PumpState(p.v.Load()) }
func (p *pumpState) store(s PumpState) { p.v.Store(int32(s)) }
