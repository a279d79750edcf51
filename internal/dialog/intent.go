package dialog

// Intent describes what the user should see. The transport decides how.
type Intent interface {
	intent()
}

// ShowOptions prompts the user to pick exactly one of Options.
type ShowOptions struct {
	Prompt       string
	Options      []string
	SingleChoice bool
}

// Notice is a plain informational message.
type Notice struct {
	Text string
}

// ProgramDelivered carries the rendered program.
type ProgramDelivered struct {
	Text string
}

// ClearOptions withdraws any option list shown earlier.
type ClearOptions struct{}

func (ShowOptions) intent()      {}
func (Notice) intent()           {}
func (ProgramDelivered) intent() {}
func (ClearOptions) intent()     {}
