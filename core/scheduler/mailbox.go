package scheduler

import "errors"

// ErrMailboxBusy is returned when a second producer tries to block on a
// mailbox that already holds a blocked producer.
var ErrMailboxBusy = errors.New("mailbox already has a blocked producer")

// Mailbox is a capacity-1 handoff between two processes. A consumer waiting
// on an empty mailbox is resumed when an item arrives; a producer offering
// an item to a full mailbox is resumed once the slot drains.
type Mailbox[T any] struct {
	sched *Scheduler

	item T
	full bool

	getter Process

	putter  Process
	pending T
	blocked bool
}

// NewMailbox returns an empty mailbox bound to s.
func NewMailbox[T any](s *Scheduler) *Mailbox[T] {
	return &Mailbox[T]{sched: s}
}

// Put offers item. It returns true when the item was stored immediately.
// Otherwise the item is held back and putter is resumed once it has been
// moved into the slot.
func (m *Mailbox[T]) Put(item T, putter Process) (bool, error) {
	if m.full {
		if m.blocked {
			return false, ErrMailboxBusy
		}
		m.pending = item
		m.putter = putter
		m.blocked = true
		return false, nil
	}
	m.item = item
	m.full = true
	if m.getter != nil {
		g := m.getter
		m.getter = nil
		m.sched.After(0, g)
	}
	return true, nil
}

// Get takes the stored item. When the mailbox is empty, getter is registered
// to be resumed on the next Put and ok is false.
func (m *Mailbox[T]) Get(getter Process) (item T, ok bool) {
	if !m.full {
		m.getter = getter
		return item, false
	}
	item = m.item
	var zero T
	m.item = zero
	m.full = false
	if m.blocked {
		m.item = m.pending
		m.pending = zero
		m.full = true
		m.blocked = false
		p := m.putter
		m.putter = nil
		if p != nil {
			m.sched.After(0, p)
		}
	}
	return item, true
}

// Len returns 1 when an item is waiting in the slot, 0 otherwise.
func (m *Mailbox[T]) Len() int {
	if m.full {
		return 1
	}
	return 0
}
