package manager

import (
	"os"
	"os/signal"
	"sync"
	"syscall"

	"khetao.com/console/shutdown"
)

const Name = "PosixSignalManager"

// PosixSignalManager starts a graceful shutdown on the first of its signals.
// The process is left running so the caller can report and pick the exit code.
type PosixSignalManager struct {
	signals []os.Signal

	c        chan os.Signal
	done     chan struct{}
	stop     chan struct{}
	stopOnce sync.Once
	received os.Signal
}

func NewPosixSignalManager(sig ...os.Signal) *PosixSignalManager {
	if len(sig) == 0 {
		sig = []os.Signal{os.Interrupt, syscall.SIGTERM}
	}

	return &PosixSignalManager{
		signals: sig,
		done:    make(chan struct{}),
		stop:    make(chan struct{}),
	}
}

func (m *PosixSignalManager) GetName() string {
	return Name
}

func (m *PosixSignalManager) Start(gs shutdown.GracefulShutdownI) error {
	m.c = make(chan os.Signal, 1)
	signal.Notify(m.c, m.signals...)

	go func() {
		// Block until a signal is received.
		select {
		case s := <-m.c:
			m.received = s
			gs.Start(m)
		case <-m.stop:
		}
	}()

	return nil
}

func (m *PosixSignalManager) ShutdownStart() error {
	return nil
}

func (m *PosixSignalManager) ShutdownFinish() error {
	close(m.done)
	return nil
}

// Done is closed once every shutdown callback has returned.
func (m *PosixSignalManager) Done() <-chan struct{} {
	return m.done
}

// Signal is the signal that started the shutdown. It is only meaningful after
// Done is closed.
func (m *PosixSignalManager) Signal() os.Signal {
	return m.received
}

// Stop stops watching for signals.
func (m *PosixSignalManager) Stop() {
	m.stopOnce.Do(func() {
		if m.c != nil {
			signal.Stop(m.c)
		}
		close(m.stop)
	})
}
