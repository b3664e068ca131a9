package cache

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/bradfitz/gomemcache/memcache"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"max.ks1230/expense-tracker/internal/entity/user"
	"max.ks1230/expense-tracker/internal/logger"
)

const (
	defaultBase = 10

	tokenOption = "token"
	userOption  = "user"
)

type memcacheClient interface {
	GetMulti(keys []string) (map[string]*memcache.Item, error)
	Set(item *memcache.Item) error
	Delete(key string) error
}

// MemcacheClient keeps session credentials in memcached, one item per
// session and kind.
type MemcacheClient struct {
	client     memcacheClient
	expiration int32
}

type config interface {
	Hosts() []string
	Expiration() int32
	Timeout() time.Duration
}

func NewMemcache(config config) (*MemcacheClient, error) {
	logger.Info("memcached hosts", zap.Strings("hosts", config.Hosts()))
	mc := memcache.New(config.Hosts()...)
	mc.Timeout = config.Timeout()
	return newMemcache(mc, config.Expiration()), mc.Ping()
}

func newMemcache(client memcacheClient, expiration int32) *MemcacheClient {
	return &MemcacheClient{client: client, expiration: expiration}
}

func formatKey(sessionID int64, option string) string {
	return "session:" + strconv.FormatInt(sessionID, defaultBase) + ":" + option
}

func (mc *MemcacheClient) GetCredentials(_ context.Context, sessionID int64) (user.Credentials, error) {
	items, err := mc.client.GetMulti([]string{
		formatKey(sessionID, tokenOption),
		formatKey(sessionID, userOption),
	})
	if err != nil {
		return user.Credentials{}, errors.Wrap(err, "get credentials")
	}

	var res user.Credentials
	if item, ok := items[formatKey(sessionID, tokenOption)]; ok {
		res.Token = string(item.Value)
	}
	if item, ok := items[formatKey(sessionID, userOption)]; ok {
		var u user.User
		if err = json.Unmarshal(item.Value, &u); err != nil {
			return user.Credentials{}, errors.Wrap(err, "decode cached user")
		}
		res.User = &u
	}
	return res, nil
}

func (mc *MemcacheClient) SaveToken(_ context.Context, sessionID int64, token string) error {
	logger.Info("cache token", zap.Int64("sessionID", sessionID))
	return mc.client.Set(&memcache.Item{
		Key:        formatKey(sessionID, tokenOption),
		Value:      []byte(token),
		Expiration: mc.expiration,
	})
}

func (mc *MemcacheClient) SaveUser(_ context.Context, sessionID int64, u user.User) error {
	raw, err := json.Marshal(u)
	if err != nil {
		return errors.Wrap(err, "encode user")
	}
	logger.Info("cache user", zap.Int64("sessionID", sessionID))
	return mc.client.Set(&memcache.Item{
		Key:        formatKey(sessionID, userOption),
		Value:      raw,
		Expiration: mc.expiration,
	})
}

func (mc *MemcacheClient) ClearCredentials(_ context.Context, sessionID int64) error {
	logger.Info("invalidate credentials", zap.Int64("sessionID", sessionID))

	for _, opt := range []string{tokenOption, userOption} {
		err := mc.client.Delete(formatKey(sessionID, opt))
		if err != nil && !errors.Is(err, memcache.ErrCacheMiss) {
			return err
		}
	}
	return nil
}
