package cdrom

// Request is one control call. Arg holds the encoded wire structure and is
// updated in place by the device. When Arg is empty, Value is passed as
// the integer argument. Data is the caller region that Arg points into,
// kept reachable for the duration of the call.
type Request struct {
	Op    Operation
	Value uintptr
	Arg   []byte
	Data  []byte
}

// Device issues control calls against an open drive handle.
// Control returns the raw ioctl result; failures carry the errno.
type Device interface {
	Control(req *Request) (int, error)
	Close() error
}
