package config

import (
	"bytes"
	"encoding/base64"
	"errors"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// EnvPrefix namespaces environment overrides: database.url is read from
// XCELTRACK_DATABASE_URL when set.
const EnvPrefix = "XCELTRACK"

var errConfigTypeRequired = errors.New("config type is required")

// Viper is a Config backed by spf13/viper.
type Viper struct {
	v *viper.Viper
}

// NewViper reads the file at pathFile, layers environment overrides on top
// and reloads the file whenever it changes on disk.
func NewViper(pathFile string) (*Viper, error) {
	v := newViper()

	ext := filepath.Ext(pathFile)
	v.AddConfigPath(filepath.Dir(pathFile))
	v.SetConfigName(strings.TrimSuffix(filepath.Base(pathFile), ext))
	if ext != "" {
		v.SetConfigType(strings.TrimPrefix(ext, "."))
	}

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	v.OnConfigChange(func(e fsnotify.Event) {
		slog.Info("config file changed", "path", e.Name, "op", e.Op.String())
	})
	v.WatchConfig()

	return &Viper{v: v}, nil
}

// NewViperFromBytes builds a Config from an in-memory document. Mostly used
// by tests.
func NewViperFromBytes(configType string, data []byte) (*Viper, error) {
	if strings.TrimSpace(configType) == "" {
		return nil, errConfigTypeRequired
	}

	v := newViper()
	v.SetConfigType(configType)

	if err := v.ReadConfig(bytes.NewReader(data)); err != nil {
		return nil, err
	}

	return &Viper{v: v}, nil
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func (vc *Viper) GetBool(key string) bool {
	return vc.v.GetBool(key)
}

func (vc *Viper) GetString(key string) string {
	return vc.v.GetString(key)
}

func (vc *Viper) GetInt(key string) int {
	return vc.v.GetInt(key)
}

func (vc *Viper) GetInt32(key string) int32 {
	return vc.v.GetInt32(key)
}

func (vc *Viper) GetInt64(key string) int64 {
	return vc.v.GetInt64(key)
}

func (vc *Viper) GetFloat64(key string) float64 {
	return vc.v.GetFloat64(key)
}

func (vc *Viper) GetSecond(key string) time.Duration {
	return time.Duration(vc.v.GetInt64(key)) * time.Second
}

func (vc *Viper) GetMinute(key string) time.Duration {
	return time.Duration(vc.v.GetInt64(key)) * time.Minute
}

func (vc *Viper) GetBinary(key string) []byte {
	raw := strings.TrimSpace(vc.v.GetString(key))
	if raw == "" {
		return nil
	}

	data, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return nil
	}

	return data
}

func (vc *Viper) GetArray(key string) []string {
	var items []string
	if list, ok := vc.v.Get(key).([]any); ok {
		for _, item := range list {
			if s, ok := item.(string); ok {
				items = append(items, s)
			}
		}
	} else {
		items = strings.Split(vc.v.GetString(key), ",")
	}

	out := make([]string, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}

	return out
}

// Close exists so Config can sit in the application closer list.
func (vc *Viper) Close() error {
	return nil
}
