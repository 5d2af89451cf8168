// Package checkpoint persists the time of the last successful reconciliation of
// every dashboard spreadsheet.
package checkpoint

import (
	"context"
	"errors"
	"time"
)

// Key names the stored checkpoint object in key-value drivers.
const Key = "sheet_checker:checkpoints"

var ErrUnknownDriver = errors.New("unknown checkpoint driver")

// Checkpoints maps a spreadsheet id to the Unix seconds of its last successful
// reconciliation.
type Checkpoints map[string]int64

// Clone returns an independent copy.
func (c Checkpoints) Clone() Checkpoints {
	out := make(Checkpoints, len(c))
	for id, ts := range c {
		out[id] = ts
	}
	return out
}

// Due reports whether id was never reconciled or was last reconciled more than
// interval before now.
func (c Checkpoints) Due(id string, now time.Time, interval time.Duration) bool {
	last, ok := c[id]
	if !ok {
		return true
	}
	return now.Unix()-last > int64(interval/time.Second)
}

// Store loads and saves the whole checkpoint map. A missing checkpoint loads as
// an empty map.
type Store interface {
	Load(ctx context.Context) (Checkpoints, error)
	Save(ctx context.Context, c Checkpoints) error
	Close() error
}

// Config selects and configures a driver.
//
// Driver values:
//   - "memory": process-local, lost on restart
//   - "file": JSON file replaced atomically
//   - "sqlite": key-value table in a SQLite database file
//   - "valkey": single key on a Valkey/Redis server
type Config struct {
	Driver string `mapstructure:"driver" validate:"required|in:memory,file,sqlite,valkey"`
	Path   string `mapstructure:"path"`

	Valkey ValkeyConfig `mapstructure:"valkey"`
}

type ValkeyConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Key      string `mapstructure:"key"`
	TLS      bool   `mapstructure:"tls"`
}
