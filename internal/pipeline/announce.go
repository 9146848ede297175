package pipeline

// AnnouncementCounter hands out announcement tags for one scan cycle. Next
// must be called exactly once per attempted entry, in scan order.
type AnnouncementCounter struct {
	remaining int
}

// NewAnnouncementCounter starts a counter for a scan with n announcement entries.
func NewAnnouncementCounter(n int) *AnnouncementCounter {
	if n < 0 {
		n = 0
	}
	return &AnnouncementCounter{remaining: n}
}

// Next consumes one position and reports whether it is an announcement.
func (c *AnnouncementCounter) Next() bool {
	if c.remaining > 0 {
		c.remaining--
		return true
	}
	return false
}

// Remaining is the number of announcement positions not yet consumed.
func (c *AnnouncementCounter) Remaining() int {
	return c.remaining
}
