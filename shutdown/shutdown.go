// Package shutdown runs callbacks when a shutdown manager, such as the posix
// signal manager, reports that the process should stop.
package shutdown

import "sync"

type Callback interface {
	OnShutdown(string) error
}

type Func func(string) error

func (f Func) OnShutdown(shutdownManager string) error {
	return f(shutdownManager)
}

type ErrorHandler interface {
	OnError(err error)
}

type ErrorFunc func(err error)

func (f ErrorFunc) OnError(err error) {
	f(err)
}

type Manager interface {
	GetName() string
	Start(gs GracefulShutdownI) error
	ShutdownStart() error
	ShutdownFinish() error
}

type GracefulShutdownI interface {
	Start(manager Manager)
	ReportError(err error)
	AddCallback(callback Callback)
}

type GracefulShutdown struct {
	mu           sync.Mutex
	callbacks    []Callback
	managers     []Manager
	errorHandler ErrorHandler
}

func New() *GracefulShutdown {
	return &GracefulShutdown{
		callbacks: make([]Callback, 0, 10),
		managers:  make([]Manager, 0, 3),
	}
}

// Start runs every callback concurrently on behalf of manager and waits for them.
func (g *GracefulShutdown) Start(manager Manager) {
	g.ReportError(manager.ShutdownStart())

	g.mu.Lock()
	callbacks := append([]Callback(nil), g.callbacks...)
	g.mu.Unlock()

	var wg sync.WaitGroup
	for _, callback := range callbacks {
		wg.Add(1)
		go func(callback Callback) {
			defer wg.Done()
			g.ReportError(callback.OnShutdown(manager.GetName()))
		}(callback)
	}
	wg.Wait()

	g.ReportError(manager.ShutdownFinish())
}

func (g *GracefulShutdown) SetErrorHandler(handler ErrorHandler) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.errorHandler = handler
}

func (g *GracefulShutdown) ReportError(err error) {
	if err == nil {
		return
	}
	g.mu.Lock()
	handler := g.errorHandler
	g.mu.Unlock()
	if handler != nil {
		handler.OnError(err)
	}
}

func (g *GracefulShutdown) AddCallback(callback Callback) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.callbacks = append(g.callbacks, callback)
}

func (g *GracefulShutdown) AddShutdownManager(manager Manager) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.managers = append(g.managers, manager)
}

// StartShutdown starts every manager so that they begin watching for shutdown.
func (g *GracefulShutdown) StartShutdown() error {
	g.mu.Lock()
	managers := append([]Manager(nil), g.managers...)
	g.mu.Unlock()

	for _, manager := range managers {
		if err := manager.Start(g); err != nil {
			return err
		}
	}
	return nil
}
