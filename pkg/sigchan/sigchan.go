package sigchan

// Chan is a non-blocking notification channel. Emit never blocks; a full
// buffer drops the signal, which is fine because one pending signal already
// means "wake up".
type Chan struct {
	c chan struct{}
}

func New(bufferSize int) *Chan {
	return &Chan{c: make(chan struct{}, bufferSize)}
}

// Emit sends a signal without blocking.
func (c *Chan) Emit() {
	select {
	case c.c <- struct{}{}:
	default:
	}
}

// C exposes the channel for select loops.
func (c *Chan) C() <-chan struct{} {
	return c.c
}
