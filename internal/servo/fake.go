package servo

// FakeServo records commanded angles for test assertions.
type FakeServo struct {
	// Angles contains every successfully commanded angle, oldest first.
	Angles []int

	// Error, if set, is returned by ChangeAngle and the angle is not recorded.
	Error error

	// Closed tracks if Close was called
	Closed bool
}

// NewFakeServo creates a FakeServo.
func NewFakeServo() *FakeServo {
	return &FakeServo{}
}

// ChangeAngle records the angle.
func (f *FakeServo) ChangeAngle(angle int) error {
	if f.Error != nil {
		return f.Error
	}
	f.Angles = append(f.Angles, angle)
	return nil
}

// Close marks the servo as closed.
func (f *FakeServo) Close() error {
	f.Closed = true
	return nil
}
