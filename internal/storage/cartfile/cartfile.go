// Package cartfile persists cart contents as a JSON document on disk, the
// default persistence backend for a single-node deployment.
package cartfile

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/go-faster/errors"

	"github.com/freshcart/storefront/internal/domain/cart"
)

var _ cart.Persister = (*Persister)(nil)

// Persister stores the cart at a fixed path. Writes are atomic: the document
// is written to a sibling temp file and renamed over the target, so a crash
// mid-write never leaves a truncated cart behind.
type Persister struct {
	path string
}

func New(path string) *Persister {
	return &Persister{path: path}
}

// Load reads the persisted cart. A missing file is an empty cart; a file
// that does not parse is reported as an error so the caller can discard it.
func (p *Persister) Load(_ context.Context) ([]cart.LineItem, error) {
	data, err := os.ReadFile(p.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "read cart file")
	}

	var items []cart.LineItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, errors.Wrap(err, "decode cart file")
	}
	return items, nil
}

func (p *Persister) Save(_ context.Context, items []cart.LineItem) error {
	if items == nil {
		items = []cart.LineItem{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return errors.Wrap(err, "encode cart")
	}

	dir := filepath.Dir(p.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(p.path)+".tmp-*")
	if err != nil {
		return errors.Wrap(err, "create temp cart file")
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Wrap(err, "write cart file")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "close cart file")
	}
	if err := os.Rename(tmp.Name(), p.path); err != nil {
		return errors.Wrap(err, "replace cart file")
	}
	return nil
}
