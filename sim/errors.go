package sim

import "errors"

// Sentinel errors for command refusals. Handlers wrap these with
// fmt.Errorf("...: %w", err) context; transport maps them onto
// response payload text.
var (
	// ErrBusy indicates an AGV received a command while not idle.
	ErrBusy = errors.New("agv busy")

	// ErrInsufficientBattery indicates an AGV refused a move because the
	// projected battery cost exceeds the current level.
	ErrInsufficientBattery = errors.New("insufficient battery")

	// ErrBufferFull indicates a device buffer has no free slot.
	ErrBufferFull = errors.New("buffer full")

	// ErrBufferEmpty indicates a device has no product available to load.
	ErrBufferEmpty = errors.New("buffer empty")

	// ErrDeviceFault indicates the target device or AGV is faulted.
	ErrDeviceFault = errors.New("device fault")

	// ErrUnknownLine indicates a command referenced a production line
	// that does not exist.
	ErrUnknownLine = errors.New("unknown production line")

	// ErrUnknownAGV indicates a command referenced an AGV that does not
	// exist on the line.
	ErrUnknownAGV = errors.New("unknown agv")

	// ErrUnknownDevice indicates no device is mapped to the given point.
	ErrUnknownDevice = errors.New("unknown device")

	// ErrUnknownPoint indicates a point ID absent from the path graph.
	ErrUnknownPoint = errors.New("unknown point")

	// ErrNoPath indicates two points are not connected.
	ErrNoPath = errors.New("no path between points")

	// ErrNoCargo indicates an unload was attempted with empty cargo.
	ErrNoCargo = errors.New("no cargo")

	// ErrCargoOccupied indicates a load was attempted while carrying.
	ErrCargoOccupied = errors.New("cargo occupied")

	// ErrQueueFull indicates the command ingress queue rejected a
	// submission because the simulation is not draining fast enough.
	ErrQueueFull = errors.New("command queue full")
)
