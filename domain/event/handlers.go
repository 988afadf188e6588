package event

// Handler receives the changes of the active conversation, in arrival order.
type Handler interface {
	OnNewMessage(m MessageChange)
	OnMessageUpdate(m MessageChange)
}

// Dispatch routes a change to the matching Handler method.
// Unknown types are dropped.
func Dispatch(h Handler, change MessageChange) bool {
	switch change.Type {
	case NewMessageType:
		h.OnNewMessage(change)
	case MessageUpdateType:
		h.OnMessageUpdate(change)
	default:
		return false
	}
	return true
}
