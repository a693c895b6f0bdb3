package store

import (
	"time"

	"github.com/sirupsen/logrus"
)

// Logger logs every dispatched action at debug level.
func Logger(log logrus.FieldLogger) Middleware {
	return func(next DispatchFunc) DispatchFunc {
		return func(a Action) {
			start := time.Now()
			next(a)
			log.WithFields(logrus.Fields{
				"action":   a.Type(),
				"duration": time.Since(start),
			}).Debug("action dispatched")
		}
	}
}
