package config

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-viper/mapstructure/v2"
	"gopkg.in/yaml.v3"

	"github.com/aehttpd/aehttpd/contrib/log"
)

// Observer is config observer.
type Observer[T any] func(string, *T)

// Config is a config interface.
type Config[T any] interface {
	Scan(v *T) error
	Watch(key string, o Observer[T]) error
	Close() error
}

type config[T any] struct {
	opts   *options
	stop   chan struct{}
	signal chan os.Signal

	watchers []Watcher

	observers map[string][]Observer[T]
	bc        *T
}

func New[T any](opts ...Option) Config[T] {
	o := &options{}

	for _, opt := range opts {
		opt(o)
	}

	c := &config[T]{
		opts:      o,
		stop:      make(chan struct{}, 1),
		signal:    make(chan os.Signal, 1),
		observers: make(map[string][]Observer[T]),
		bc:        nil,
	}

	for _, src := range o.sources {
		if w, ok := src.Watch(); ok {
			c.watchers = append(c.watchers, w)
		}
	}

	go c.tick()
	for _, w := range c.watchers {
		go c.watchFile(w)
	}

	return c
}

// Scan loads every source, unmarshals each KeyValue's raw bytes into a
// map[string]any, then mapstructure-decodes that map onto v.
func (c *config[T]) Scan(v *T) error {
	c.bc = v

	for _, source := range c.opts.sources {
		files, err := source.Load()
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("config file not found: %w", err)
			}
			return err
		}
		for _, file := range files {
			if file.Value == nil {
				continue
			}
			log.Debugf("[config] load file: %s format: %s", file.Key, file.Format)
			if err := unmarshalInto(file, v); err != nil {
				log.Errorf("[config] unmarshal file: %s error: %s", file.Key, err)
			}
		}
	}
	return nil
}

func unmarshalInto(file *KeyValue, v any) error {
	raw := make(map[string]any)
	if err := yaml.Unmarshal(file.Value, &raw); err != nil {
		return err
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           v,
		WeaklyTypedInput: true,
		TagName:          "yaml",
	})
	if err != nil {
		return err
	}
	return dec.Decode(raw)
}

func (c *config[T]) Watch(key string, o Observer[T]) error {
	if c.observers[key] == nil {
		c.observers[key] = make([]Observer[T], 0, 8)
	}
	c.observers[key] = append(c.observers[key], o)
	return nil
}

func (c *config[T]) Close() error {
	c.stop <- struct{}{}
	close(c.stop)
	close(c.signal)
	for _, w := range c.watchers {
		_ = w.Stop()
	}

	return nil
}

// tick reloads on SIGHUP.
func (c *config[T]) tick() {
	signal.Notify(c.signal, syscall.SIGHUP)

	for {
		select {
		case <-c.stop:
			return
		case _, ok := <-c.signal:
			if !ok {
				return
			}
			log.Debug("[config] received SIGHUP")
			c.reload()
		}
	}
}

// watchFile reloads whenever the underlying file changes on disk,
// independent of the SIGHUP tick above. Both paths converge on the
// same reload() so observers never see a different update shape.
func (c *config[T]) watchFile(w Watcher) {
	for {
		if _, err := w.Next(); err != nil {
			return
		}
		log.Debug("[config] detected file change")
		c.reload()
	}
}

func (c *config[T]) reload() {
	if c.bc == nil {
		return
	}
	if err := c.Scan(c.bc); err != nil {
		log.Warnf("[config] reload failed: %s", err)
		return
	}
	for k, observers := range c.observers {
		log.Debugf("[config] upgrade key: %s", k)
		for _, observer := range observers {
			observer(k, c.bc)
		}
	}
}
