package protocol

// EmuStatus is the emulator run state reported by the Status command.
type EmuStatus int

const (
	EmuRunning EmuStatus = iota
	EmuPaused
	EmuShutdown
	EmuUnknown
)

// StatusFromCode maps a wire status code. Codes other than 0, 1 and 2 map to
// EmuUnknown.
func StatusFromCode(code uint32) EmuStatus {
	switch code {
	case 0:
		return EmuRunning
	case 1:
		return EmuPaused
	case 2:
		return EmuShutdown
	default:
		return EmuUnknown
	}
}

// Code returns the wire code for s. EmuUnknown has no code of its own and
// encodes as 0xFFFFFFFF.
func (s EmuStatus) Code() uint32 {
	switch s {
	case EmuRunning:
		return 0
	case EmuPaused:
		return 1
	case EmuShutdown:
		return 2
	default:
		return ^uint32(0)
	}
}

func (s EmuStatus) String() string {
	switch s {
	case EmuRunning:
		return "running"
	case EmuPaused:
		return "paused"
	case EmuShutdown:
		return "shutdown"
	default:
		return "unknown"
	}
}
