package camera

// Device is one opened capture source. Read returns an owned frame copy,
// or false when the device produced nothing usable.
type Device interface {
	Read() (Frame, bool)
	Close() error
}
