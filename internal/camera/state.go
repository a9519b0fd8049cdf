package camera

// State is one of Idle, Acquiring, Active, Capturing or Failed.
type State interface {
	Name() string
	isState()
}

// Idle means no stream is held or requested.
type Idle struct{}

// Acquiring means a stream request is outstanding.
type Acquiring struct {
	Facing Facing
}

// Active means a stream is held and previewing.
type Active struct {
	Facing   Facing
	StreamID string
}

// Capturing is held while the current frame is being encoded.
type Capturing struct{}

// Failed means the last acquisition was refused. Start may be retried.
type Failed struct {
	Err     error
	Message string
}

func (Idle) Name() string      { return "idle" }
func (Acquiring) Name() string { return "acquiring" }
func (Active) Name() string    { return "active" }
func (Capturing) Name() string { return "capturing" }
func (Failed) Name() string    { return "error" }

func (Idle) isState()      {}
func (Acquiring) isState() {}
func (Active) isState()    {}
func (Capturing) isState() {}
func (Failed) isState()    {}
