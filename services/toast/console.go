package toastsvc

import (
	"fmt"
	"log"
	"sync"

	"github.com/trezcool/registro/core/notification"
)

// consoleToaster prints toasts to the standard logger. It stands in for the
// transient presentation surface of the frontend.
type consoleToaster struct {
	std *log.Logger
}

var _ notification.Toaster = (*consoleToaster)(nil)

func NewConsoleToaster(std *log.Logger) notification.Toaster {
	return &consoleToaster{std: std}
}

func (t consoleToaster) Show(toast notification.Toast) {
	t.std.Println(fmt.Sprintf("[%s] %s: %s", toast.Type, toast.Message, toast.Description))
}

// ToasterMock captures shown toasts for assertion in tests.
type ToasterMock struct {
	mutex  sync.Mutex
	toasts []notification.Toast
}

var _ notification.Toaster = (*ToasterMock)(nil)

func NewToasterMock() *ToasterMock {
	return &ToasterMock{}
}

func (t *ToasterMock) Show(toast notification.Toast) {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	t.toasts = append(t.toasts, toast)
}

func (t *ToasterMock) Toasts() []notification.Toast {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	return append([]notification.Toast(nil), t.toasts...)
}
