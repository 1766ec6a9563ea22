package observation

import (
	"github.com/sandrolain/gobinding/pkg/types"
)

// Func is the callable value of the binding runtime.
// this is the receiver the function was looked up on (nil for free calls).
type Func func(this interface{}, args ...interface{}) (interface{}, error)

// Getter computes an accessor property. Reads performed through this are
// tracked when a connectable is active.
type Getter func(this *ObjectProxy) interface{}

// Setter writes an accessor property.
type Setter func(this *ObjectProxy, value interface{}) error

// Descriptor describes one property of an Object.
// A descriptor with a Get function is an accessor property; otherwise it is a
// data property holding Value.
type Descriptor struct {
	Value        interface{}
	Get          Getter
	Set          Setter
	Configurable bool
}

// IsAccessor reports whether d describes an accessor property.
func (d *Descriptor) IsAccessor() bool {
	return d.Get != nil || d.Set != nil
}

// Object is an ordered property bag with an optional prototype.
// It is the observable counterpart of a plain script object.
type Object struct {
	keys      []string
	props     map[string]*Descriptor
	proto     *Object
	observers map[string]Observer
}

// NewObject creates an empty object.
func NewObject() *Object {
	return &Object{props: make(map[string]*Descriptor)}
}

// ObjectOf creates an object from alternating key/value pairs.
func ObjectOf(kv ...interface{}) *Object {
	o := NewObject()
	for i := 0; i+1 < len(kv); i += 2 {
		key, _ := kv[i].(string)
		o.setRaw(key, kv[i+1])
	}
	return o
}

// WithProto sets the prototype consulted for missing properties and returns o.
func (o *Object) WithProto(proto *Object) *Object {
	o.proto = proto
	return o
}

// Proto returns the prototype, if any.
func (o *Object) Proto() *Object { return o.proto }

// Keys returns the own property names in insertion order.
func (o *Object) Keys() []string {
	keys := make([]string, len(o.keys))
	copy(keys, o.keys)
	return keys
}

// Len returns the number of own properties.
func (o *Object) Len() int { return len(o.keys) }

// HasOwn reports whether key is an own property.
func (o *Object) HasOwn(key string) bool {
	_, ok := o.props[key]
	return ok
}

// Has reports whether key is an own or inherited property.
func (o *Object) Has(key string) bool {
	return o.lookup(key) != nil
}

// OwnDescriptor returns a copy of the own descriptor for key.
func (o *Object) OwnDescriptor(key string) (Descriptor, bool) {
	d, ok := o.props[key]
	if !ok {
		return Descriptor{}, false
	}
	return *d, true
}

// DefineProperty defines or replaces an own property.
// Any cached observer for the key is dropped.
func (o *Object) DefineProperty(key string, d Descriptor) {
	if _, ok := o.props[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.props[key] = &d
	delete(o.observers, key)
}

// Get reads a property, walking the prototype chain.
// Missing properties read as undefined (nil).
func (o *Object) Get(key string) interface{} {
	if ic := o.interceptor(key); ic != nil {
		return ic.GetValue()
	}
	return o.getRaw(key)
}

// Set writes a property. Writes go through an installed observer when one is
// intercepting the key, through an accessor's setter when the property is an
// accessor, and otherwise create or update an own data property.
func (o *Object) Set(key string, value interface{}) error {
	if ic := o.interceptor(key); ic != nil {
		return ic.SetValue(value)
	}
	return o.setThrough(key, value)
}

// Delete removes an own property.
func (o *Object) Delete(key string) bool {
	if _, ok := o.props[key]; !ok {
		return false
	}
	delete(o.props, key)
	for i, k := range o.keys {
		if k == key {
			o.keys = append(o.keys[:i], o.keys[i+1:]...)
			break
		}
	}
	return true
}

func (o *Object) lookup(key string) *Descriptor {
	for cur := o; cur != nil; cur = cur.proto {
		if d, ok := cur.props[key]; ok {
			return d
		}
	}
	return nil
}

func (o *Object) getRaw(key string) interface{} {
	d := o.lookup(key)
	if d == nil {
		return nil
	}
	if d.Get != nil {
		return d.Get(newObjectProxy(o, nil))
	}
	if d.Set != nil {
		return nil
	}
	return d.Value
}

func (o *Object) setThrough(key string, value interface{}) error {
	if d := o.lookup(key); d != nil && d.IsAccessor() {
		if d.Set == nil {
			return types.Errorf(types.ErrNoSetter, "property %q has no setter", key)
		}
		return d.Set(newObjectProxy(o, nil), value)
	}
	o.setRaw(key, value)
	return nil
}

// setRaw writes an own data property without consulting observers.
func (o *Object) setRaw(key string, value interface{}) {
	if d, ok := o.props[key]; ok && !d.IsAccessor() {
		d.Value = value
		return
	}
	if _, ok := o.props[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.props[key] = &Descriptor{Value: value, Configurable: true}
}

func (o *Object) interceptor(key string) interceptor {
	if o.observers == nil {
		return nil
	}
	if ic, ok := o.observers[key].(interceptor); ok && ic.intercepting() {
		return ic
	}
	return nil
}

// Observer returns the observer cached on o for key, if any.
func (o *Object) Observer(key string) (Observer, bool) {
	obs, ok := o.observers[key]
	return obs, ok
}

func (o *Object) cacheObserver(key string, obs Observer) {
	if o.observers == nil {
		o.observers = make(map[string]Observer)
	}
	o.observers[key] = obs
}

// interceptor is implemented by observers that take over reads and writes of
// an Object property while they are active.
type interceptor interface {
	intercepting() bool
	GetValue() interface{}
	SetValue(value interface{}) error
}
