package processor

import "sync"

var (
	registryLock      sync.Mutex
	registeredPlugins []Processor
)

// RegisterProcessor registers the given annotation processor. Processors are
// typically registered from the init function of the package that defines
// them, so that linking the package into a tool makes the tool run them.
func RegisterProcessor(p Processor) {
	registryLock.Lock()
	defer registryLock.Unlock()
	registeredPlugins = append(registeredPlugins, p)
}

// AllRegisteredProcessors returns the list of all registered processors, in
// the order they were registered.
func AllRegisteredProcessors() []Processor {
	registryLock.Lock()
	defer registryLock.Unlock()
	procs := make([]Processor, len(registeredPlugins))
	copy(procs, registeredPlugins)
	return procs
}
