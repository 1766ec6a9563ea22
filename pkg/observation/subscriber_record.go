package observation

const (
	slot0 uint8 = 1 << iota
	slot1
	slot2
	slotRest
)

// SubscriberRecord is a compact subscriber set. The first three subscribers
// live in inline slots tracked by a bitmask; further ones go to an overflow
// slice. The zero value is ready to use.
type SubscriberRecord[S comparable] struct {
	s0, s1, s2 S
	rest       []S
	flags      uint8
	count      int
}

// Count returns the number of subscribers.
func (r *SubscriberRecord[S]) Count() int { return r.count }

// Any reports whether there is at least one subscriber.
func (r *SubscriberRecord[S]) Any() bool { return r.count > 0 }

// Has reports whether s is subscribed.
func (r *SubscriberRecord[S]) Has(s S) bool {
	if r.flags&slot0 != 0 && r.s0 == s {
		return true
	}
	if r.flags&slot1 != 0 && r.s1 == s {
		return true
	}
	if r.flags&slot2 != 0 && r.s2 == s {
		return true
	}
	if r.flags&slotRest != 0 {
		for _, x := range r.rest {
			if x == s {
				return true
			}
		}
	}
	return false
}

// Add subscribes s. It returns false when s was already subscribed.
func (r *SubscriberRecord[S]) Add(s S) bool {
	if r.Has(s) {
		return false
	}
	switch {
	case r.flags&slot0 == 0:
		r.s0 = s
		r.flags |= slot0
	case r.flags&slot1 == 0:
		r.s1 = s
		r.flags |= slot1
	case r.flags&slot2 == 0:
		r.s2 = s
		r.flags |= slot2
	default:
		r.rest = append(r.rest, s)
		r.flags |= slotRest
	}
	r.count++
	return true
}

// Remove unsubscribes s. It returns false when s was not subscribed.
func (r *SubscriberRecord[S]) Remove(s S) bool {
	var zero S
	switch {
	case r.flags&slot0 != 0 && r.s0 == s:
		r.s0 = zero
		r.flags &^= slot0
	case r.flags&slot1 != 0 && r.s1 == s:
		r.s1 = zero
		r.flags &^= slot1
	case r.flags&slot2 != 0 && r.s2 == s:
		r.s2 = zero
		r.flags &^= slot2
	default:
		if r.flags&slotRest == 0 {
			return false
		}
		found := false
		for i, x := range r.rest {
			if x == s {
				r.rest = append(r.rest[:i], r.rest[i+1:]...)
				found = true
				break
			}
		}
		if !found {
			return false
		}
		if len(r.rest) == 0 {
			r.rest = nil
			r.flags &^= slotRest
		}
	}
	r.count--
	return true
}

// Each calls fn for every subscriber, inline slots first. The set is
// snapshotted first so fn may subscribe or unsubscribe freely.
func (r *SubscriberRecord[S]) Each(fn func(S)) {
	flags := r.flags
	s0, s1, s2 := r.s0, r.s1, r.s2
	var rest []S
	if flags&slotRest != 0 {
		rest = make([]S, len(r.rest))
		copy(rest, r.rest)
	}
	if flags&slot0 != 0 {
		fn(s0)
	}
	if flags&slot1 != 0 {
		fn(s1)
	}
	if flags&slot2 != 0 {
		fn(s2)
	}
	for _, s := range rest {
		fn(s)
	}
}

// propertySubscribers notifies property subscribers.
type propertySubscribers struct {
	SubscriberRecord[Subscriber]
}

func (r *propertySubscribers) notify(newValue, oldValue interface{}) {
	r.Each(func(s Subscriber) { s.HandleChange(newValue, oldValue) })
}

// collectionSubscribers notifies collection subscribers.
type collectionSubscribers struct {
	SubscriberRecord[CollectionSubscriber]
}

func (r *collectionSubscribers) notify(c Collection, indexMap *IndexMap) {
	r.Each(func(s CollectionSubscriber) { s.HandleCollectionChange(c, indexMap) })
}
