package config

// KeyValue is one loaded configuration unit: either a whole file
// (Format set, Value the raw file bytes) or a single resolved key.
type KeyValue struct {
	Key    string
	Value  []byte
	Format string
}

// Source loads configuration data and, optionally, notifies on
// changes. Watch returns ok=false when the source doesn't support
// watching (most don't).
type Source interface {
	Load() ([]*KeyValue, error)
	Watch() (w Watcher, ok bool)
}

// Watcher streams change notifications from a Source. Next blocks
// until the underlying file system reports a write, then returns the
// reloaded KeyValues. Stop releases any held resources.
type Watcher interface {
	Next() ([]*KeyValue, error)
	Stop() error
}
