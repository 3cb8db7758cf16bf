package browser

import "sync"

// Observer is notified when the catalog session is established or torn
// down, so host playback entities can refresh their capabilities.
//
// Entities register on creation and deregister on destruction; the browser
// notifies the registry directly instead of discovering live instances.
type Observer interface {
	CatalogSessionChanged(active bool)
}

type observerRegistry struct {
	mu        sync.Mutex
	observers map[Observer]struct{}
}

func newObserverRegistry() *observerRegistry {
	return &observerRegistry{observers: make(map[Observer]struct{})}
}

func (r *observerRegistry) add(observer Observer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.observers[observer] = struct{}{}
}

func (r *observerRegistry) remove(observer Observer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.observers, observer)
}

func (r *observerRegistry) notify(active bool) {
	r.mu.Lock()
	observers := make([]Observer, 0, len(r.observers))
	for observer := range r.observers {
		observers = append(observers, observer)
	}
	r.mu.Unlock()

	for _, observer := range observers {
		observer.CatalogSessionChanged(active)
	}
}
