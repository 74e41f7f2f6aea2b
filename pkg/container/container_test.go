package container_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/emberwick/storefront/pkg/container"
)

type fakeStore struct{ name string }

func TestSingletonResolvesOnceAndCaches(t *testing.T) {
	calls := 0
	container.Singleton("test.store", func() interface{} {
		calls++
		return &fakeStore{name: "memory"}
	})

	first := container.Make("test.store").(*fakeStore)
	second := container.Make("test.store").(*fakeStore)

	assert.Same(t, first, second, "a singleton must resolve to one instance")
	assert.Equal(t, 1, calls, "the factory must run exactly once")
}

func TestBindResolvesFreshInstances(t *testing.T) {
	container.Bind("test.fresh", func() interface{} {
		return &fakeStore{name: "fresh"}
	})

	first := container.Make("test.fresh").(*fakeStore)
	second := container.Make("test.fresh").(*fakeStore)

	assert.NotSame(t, first, second)
}

func TestHas(t *testing.T) {
	container.Singleton("test.has", func() interface{} { return 1 })

	assert.True(t, container.Has("test.has"))
	assert.False(t, container.Has("test.never-bound"))
}

func TestMakeUnknownBindingPanics(t *testing.T) {
	assert.Panics(t, func() { container.Make("test.unknown") })
}
