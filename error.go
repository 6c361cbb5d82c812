package wlb

import "fmt"

// ProtocolError is the fatal wl_display.error event. The compositor closes
// the connection after sending it.
type ProtocolError struct {
	ObjectId Id
	Code     uint32
	Message  string
}

func (err *ProtocolError) Error() string {
	return fmt.Sprintf("wayland protocol error on object %d (code %d): %s",
		err.ObjectId, err.Code, err.Message)
}
