package checkpoint

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/valkey-io/valkey-go"
)

type valkeyStore struct {
	client valkey.Client
	key    string
}

func openValkey(cfg Config) (Store, error) {
	address := strings.TrimSpace(cfg.Valkey.Address)
	if address == "" {
		return nil, errors.New("valkey address is required for valkey driver")
	}

	option := valkey.ClientOption{
		InitAddress: []string{address},
		Password:    cfg.Valkey.Password,
		SelectDB:    cfg.Valkey.DB,
	}
	if cfg.Valkey.TLS {
		option.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}

	client, err := valkey.NewClient(option)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to valkey at %s: %w", address, err)
	}

	key := cfg.Valkey.Key
	if key == "" {
		key = Key
	}
	return &valkeyStore{client: client, key: key}, nil
}

func (v *valkeyStore) Load(ctx context.Context) (Checkpoints, error) {
	value, err := v.client.Do(ctx, v.client.B().Get().Key(v.key).Build()).ToString()
	if valkey.IsValkeyNil(err) {
		return Checkpoints{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read checkpoints: %w", err)
	}
	return decode([]byte(value))
}

func (v *valkeyStore) Save(ctx context.Context, c Checkpoints) error {
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode checkpoints: %w", err)
	}
	if err := v.client.Do(ctx, v.client.B().Set().Key(v.key).Value(string(data)).Build()).Error(); err != nil {
		return fmt.Errorf("failed to write checkpoints: %w", err)
	}
	return nil
}

func (v *valkeyStore) Close() error {
	v.client.Close()
	return nil
}
