package goroutine

import (
	"runtime/debug"
)

// Logger интерфейс для логирования ошибок. Подходит *logrus.Logger и *logrus.Entry.
type Logger interface {
	Errorf(format string, args ...interface{})
}

// SafeGo запускает fn в горутине. Panic логируется со стеком и не роняет процесс.
// Возвращённый канал закрывается после завершения fn.
func SafeGo(log Logger, name string, fn func()) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		defer func() {
			if r := recover(); r != nil {
				log.Errorf("panic в горутине %s: %v\n%s", name, r, debug.Stack())
			}
		}()
		fn()
	}()
	return done
}
