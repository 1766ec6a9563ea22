package observation

// PrimitiveObserver observes a property of a primitive value. Primitives are
// immutable, so it never notifies and ignores writes. It is not cached.
type PrimitiveObserver struct {
	obj interface{}
	key string
}

// GetValue returns the property of the primitive, e.g. a string's length.
func (o *PrimitiveObserver) GetValue() interface{} {
	return GetProperty(o.obj, o.key)
}

// SetValue does nothing.
func (o *PrimitiveObserver) SetValue(interface{}) error { return nil }

// Subscribe does nothing.
func (o *PrimitiveObserver) Subscribe(Subscriber) {}

// Unsubscribe does nothing.
func (o *PrimitiveObserver) Unsubscribe(Subscriber) {}

// PropertyAccessor reads and writes a property without observing it.
type PropertyAccessor struct {
	obj interface{}
	key string
}

// GetValue reads the property.
func (a *PropertyAccessor) GetValue() interface{} {
	return GetProperty(a.obj, a.key)
}

// SetValue writes the property.
func (a *PropertyAccessor) SetValue(value interface{}) error {
	return SetProperty(a.obj, a.key, value)
}
