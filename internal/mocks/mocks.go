// File: internal/mocks/mocks.go
package mocks

import (
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/xkilldash9x/dropzone/api/schemas"
	"github.com/xkilldash9x/dropzone/pkg/geometry"
)

// -- Environment Mock --

// MockEnvironment mocks the engine.Environment interface.
type MockEnvironment struct {
	mock.Mock
}

func (m *MockEnvironment) Viewport() schemas.Viewport {
	args := m.Called()
	return args.Get(0).(schemas.Viewport)
}

func (m *MockEnvironment) ScrollWindow(change geometry.Position) {
	m.Called(change)
}

// -- Draggable Measurer Mock --

// MockDraggableMeasurer mocks the registry.DraggableMeasurer interface.
type MockDraggableMeasurer struct {
	mock.Mock
}

func (m *MockDraggableMeasurer) GetDimension(windowScroll geometry.Position) schemas.DraggableDimension {
	args := m.Called(windowScroll)
	return args.Get(0).(schemas.DraggableDimension)
}

// -- Droppable Callbacks Mock --

// MockDroppableCallbacks mocks the registry.DroppableCallbacks interface. The
// scroll watcher handed over at measurement time is kept so tests can report
// scrolls through it.
type MockDroppableCallbacks struct {
	mock.Mock

	mu      sync.Mutex
	watcher func(geometry.Position)
}

func (m *MockDroppableCallbacks) GetDimensionAndWatchScroll(windowScroll geometry.Position, onScroll func(geometry.Position)) schemas.DroppableDimension {
	m.mu.Lock()
	m.watcher = onScroll
	m.mu.Unlock()
	args := m.Called(windowScroll, onScroll)
	return args.Get(0).(schemas.DroppableDimension)
}

func (m *MockDroppableCallbacks) GetScrollWhileDragging() geometry.Position {
	args := m.Called()
	return args.Get(0).(geometry.Position)
}

func (m *MockDroppableCallbacks) Scroll(change geometry.Position) {
	m.Called(change)
}

func (m *MockDroppableCallbacks) DragStopped() {
	m.Called()
}

// ReportScroll invokes the watcher captured by GetDimensionAndWatchScroll.
// It returns false when nothing is watching.
func (m *MockDroppableCallbacks) ReportScroll(scroll geometry.Position) bool {
	m.mu.Lock()
	watcher := m.watcher
	m.mu.Unlock()
	if watcher == nil {
		return false
	}
	watcher(scroll)
	return true
}

// -- Scheduler Mock --

// MockScheduler mocks the frame.Scheduler interface and keeps requested
// callbacks so a test can run them.
type MockScheduler struct {
	mock.Mock

	mu        sync.Mutex
	callbacks []func()
}

func (m *MockScheduler) Request(fn func()) func() {
	m.mu.Lock()
	m.callbacks = append(m.callbacks, fn)
	m.mu.Unlock()
	args := m.Called(fn)
	if cancel, ok := args.Get(0).(func()); ok {
		return cancel
	}
	return func() {}
}

// RunAll runs and forgets every callback requested so far.
func (m *MockScheduler) RunAll() int {
	m.mu.Lock()
	callbacks := m.callbacks
	m.callbacks = nil
	m.mu.Unlock()
	for _, fn := range callbacks {
		fn()
	}
	return len(callbacks)
}
