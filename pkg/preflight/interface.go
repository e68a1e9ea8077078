// Standard interfaces and datatypes for the preflight project.
// Terms:
//   "checker" : A diagnostic that exercises one storage backend and reports results
//   "bundle"  : The set of optional credential fields handed to a resolver
package preflight

import "github.com/sirupsen/logrus"

// Logger is the logging interface passed to all preflight components.
// *logrus.Logger and *logrus.Entry both satisfy it, so callers can hand in
// either a bare logger or one pre-tagged with WithField.
type Logger interface {
	logrus.FieldLogger
}

// LookupFunc is an injected key-value lookup used anywhere preflight would
// otherwise read the process environment. It follows the os.LookupEnv
// signature so the real environment can be plugged in directly, while tests
// supply a map-backed lookup and never mutate process state.
type LookupFunc func(key string) (string, bool)
