// Package cache persists characteristic maps per device address in a JSON
// file, so a caller can skip the find-information procedure on reconnect.
package cache

import (
	"fmt"
	"os"
	"sync"

	jsoniter "github.com/json-iterator/go"

	"github.com/myolinux/bled112"
)

type charCache struct {
	filename string
	lock     sync.RWMutex
}

func New(filename string) bled112.CharacteristicsCache {
	return &charCache{
		filename: filename,
	}
}

func (cc *charCache) Store(addr bled112.Address, chars bled112.Characteristics, replace bool) error {
	cc.lock.Lock()
	defer cc.lock.Unlock()

	cache, err := cc.loadExisting()
	if err != nil {
		return err
	}

	_, ok := cache[addr.String()]
	if ok && !replace {
		return fmt.Errorf("cache already contains characteristics for %s", addr)
	}

	cache[addr.String()] = chars

	return cc.storeCache(cache)
}

func (cc *charCache) Load(addr bled112.Address) (bled112.Characteristics, error) {
	cc.lock.RLock()
	defer cc.lock.RUnlock()

	cache, err := cc.loadExisting()
	if err != nil {
		return nil, err
	}

	chars, ok := cache[addr.String()]
	if !ok {
		return nil, fmt.Errorf("characteristics for %s not found in cache", addr)
	}

	return chars, nil
}

func (cc *charCache) Clear() error {
	cc.lock.Lock()
	defer cc.lock.Unlock()

	err := os.Remove(cc.filename)
	if err != nil && !os.IsNotExist(err) {
		return err
	}

	return nil
}

func (cc *charCache) loadExisting() (map[string]bled112.Characteristics, error) {
	_, err := os.Stat(cc.filename)
	if os.IsNotExist(err) {
		return map[string]bled112.Characteristics{}, nil
	}

	in, err := os.ReadFile(cc.filename)
	if err != nil {
		return nil, err
	}

	var cache map[string]bled112.Characteristics
	err = jsoniter.Unmarshal(in, &cache)
	if err != nil {
		return nil, err
	}

	return cache, nil
}

func (cc *charCache) storeCache(cache map[string]bled112.Characteristics) error {
	out, err := jsoniter.Marshal(cache)
	if err != nil {
		return err
	}

	return os.WriteFile(cc.filename, out, 0644)
}
