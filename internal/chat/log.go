package chat

// HistoryLimit caps the number of retained events per property. The oldest
// entry is evicted first once a log is full.
const HistoryLimit = 100

// messageLog is a bounded FIFO of chat events for one property. It carries no
// lock of its own: the coordinator serializes all access.
type messageLog struct {
	limit int
	items []*ChatEvent
}

func newMessageLog(limit int) *messageLog {
	if limit <= 0 {
		limit = HistoryLimit
	}
	return &messageLog{limit: limit}
}

func (l *messageLog) append(evt *ChatEvent) {
	if len(l.items) < l.limit {
		l.items = append(l.items, evt)
		return
	}
	copy(l.items, l.items[1:])
	l.items[len(l.items)-1] = evt
}

// tail returns up to n events from the end of the log, oldest first. The
// returned slice is a copy safe to hand out after the lock is released.
func (l *messageLog) tail(n int) []*ChatEvent {
	if n <= 0 || n > len(l.items) {
		n = len(l.items)
	}
	out := make([]*ChatEvent, n)
	copy(out, l.items[len(l.items)-n:])
	return out
}

func (l *messageLog) len() int {
	return len(l.items)
}
