// Package keystore stores typed process state in the metadata table under
// fixed keys: the credential bundle, the remote page token and the app
// settings. A missing key is a valid state and is reported with ok=false.
//
// With a storage secret configured, credentials are sealed with AES-GCM
// under a key derived from the secret and a per-database salt.
package keystore

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/clipkeeper/internal/client/models"
	"github.com/dmitrijs2005/clipkeeper/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/clipkeeper/internal/common"
	"github.com/dmitrijs2005/clipkeeper/internal/cryptox"
	"github.com/dmitrijs2005/clipkeeper/internal/settings"
)

const (
	KeyCredentials = "credentials"
	KeyPageToken   = "page-token"
	KeySettings    = "app-settings"

	keySalt  = "salt"
	saltSize = 16
)

type Keystore struct {
	repo   metadata.Repository
	secret []byte

	mu  sync.Mutex
	key []byte
}

func New(repo metadata.Repository, secret string) *Keystore {
	k := &Keystore{repo: repo}
	if secret != "" {
		k.secret = []byte(secret)
	}
	return k
}

// Sealed reports whether credentials are encrypted at rest.
func (k *Keystore) Sealed() bool {
	return k.secret != nil
}

func (k *Keystore) LoadCredentials(ctx context.Context) (models.Credentials, bool, error) {
	var c models.Credentials

	raw, err := k.repo.Get(ctx, KeyCredentials)
	if err != nil || raw == nil {
		return c, false, err
	}

	if !k.Sealed() {
		if err := json.Unmarshal(raw, &c); err != nil {
			return models.Credentials{}, false, fmt.Errorf("decode credentials: %w", err)
		}
		return c, true, nil
	}

	key, err := k.sealingKey(ctx)
	if err != nil {
		return c, false, err
	}
	if err := cryptox.OpenJSON(raw, key, &c); err != nil {
		return models.Credentials{}, false, fmt.Errorf("open credentials: %w", err)
	}
	return c, true, nil
}

func (k *Keystore) PersistCredentials(ctx context.Context, c models.Credentials) error {
	var (
		raw []byte
		err error
	)
	if k.Sealed() {
		key, kerr := k.sealingKey(ctx)
		if kerr != nil {
			return kerr
		}
		raw, err = cryptox.SealJSON(c, key)
	} else {
		raw, err = json.Marshal(c)
	}
	if err != nil {
		return fmt.Errorf("encode credentials: %w", err)
	}
	return k.repo.Set(ctx, KeyCredentials, raw)
}

func (k *Keystore) ClearCredentials(ctx context.Context) error {
	return k.repo.Delete(ctx, KeyCredentials)
}

func (k *Keystore) LoadSyncCursor(ctx context.Context) (string, bool, error) {
	raw, err := k.repo.Get(ctx, KeyPageToken)
	if err != nil || raw == nil {
		return "", false, err
	}
	return string(raw), true, nil
}

func (k *Keystore) PersistSyncCursor(ctx context.Context, token string) error {
	return k.repo.Set(ctx, KeyPageToken, []byte(token))
}

func (k *Keystore) ClearSyncCursor(ctx context.Context) error {
	return k.repo.Delete(ctx, KeyPageToken)
}

func (k *Keystore) LoadSettings(ctx context.Context) (settings.AppSettings, bool, error) {
	raw, err := k.repo.Get(ctx, KeySettings)
	if err != nil || raw == nil {
		return settings.AppSettings{}, false, err
	}
	s := settings.Default()
	if err := json.Unmarshal(raw, &s); err != nil {
		return settings.AppSettings{}, false, fmt.Errorf("decode settings: %w", err)
	}
	return s, true, nil
}

func (k *Keystore) PersistSettings(ctx context.Context, s settings.AppSettings) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	return k.repo.Set(ctx, KeySettings, raw)
}

// sealingKey derives the credential key once per process, creating the
// salt on first use.
func (k *Keystore) sealingKey(ctx context.Context) ([]byte, error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	if k.key != nil {
		return k.key, nil
	}

	salt, err := k.repo.Get(ctx, keySalt)
	if err != nil {
		return nil, err
	}
	if salt == nil {
		salt = common.GenerateRandByteArray(saltSize)
		if err := k.repo.Set(ctx, keySalt, salt); err != nil {
			return nil, err
		}
	}

	k.key = cryptox.DeriveMasterKey(k.secret, salt)
	return k.key, nil
}
