// Package registry provides the concurrent name→value table backing the
// bus topic map and agent scratch memory. Reads dominate writes: topics and
// agents are registered once at startup and looked up on every publish.
package registry

import "github.com/alphadose/haxmap"

type Registry[T any] interface {
	Get(name string) (T, bool)
	Add(name string, value T)
	GetOrAdd(name string, value func() T) (T, bool)
	Del(name string)
	Len() int
	ForEach(fn func(name string, value T) bool)
}

type registry[T any] struct {
	values *haxmap.Map[string, T]
}

func New[T any]() Registry[T] {
	return &registry[T]{
		values: haxmap.New[string, T](),
	}
}

func (r *registry[T]) Get(name string) (T, bool) {
	return r.values.Get(name)
}

func (r *registry[T]) Add(name string, value T) {
	r.values.Set(name, value)
}

func (r *registry[T]) GetOrAdd(name string, valueFn func() T) (T, bool) {
	return r.values.GetOrCompute(name, valueFn)
}

func (r *registry[T]) Del(name string) {
	r.values.Del(name)
}

func (r *registry[T]) Len() int {
	return int(r.values.Len())
}

// ForEach visits entries in no particular order; fn returns false to stop.
func (r *registry[T]) ForEach(fn func(string, T) bool) {
	r.values.ForEach(fn)
}
