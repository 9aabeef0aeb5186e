// Package persist 將 store 狀態快照到單一 namespaced key，啟動時還原
package persist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/RoyceAzure/lab/storefront/internal/store"
	"github.com/rs/zerolog"
)

const (
	KeyPrefix       = "persist:"
	snapshotVersion = 1
	defaultTimeout  = 5 * time.Second
)

var ErrNotFound = errors.New("snapshot not found")

type Backend interface {
	// Load 不存在時回傳 ErrNotFound
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, data []byte) error
}

type snapshot struct {
	Version int         `json:"version"`
	SavedAt time.Time   `json:"savedAt"`
	State   store.State `json:"state"`
}

func Key(namespace string) string {
	return KeyPrefix + namespace
}

type Adapter struct {
	backend Backend
	key     string
	timeout time.Duration
	logger  *zerolog.Logger
}

func NewAdapter(backend Backend, namespace string, logger *zerolog.Logger) *Adapter {
	if backend == nil {
		panic("persist adapter dependency backend is nil")
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Adapter{
		backend: backend,
		key:     Key(namespace),
		timeout: defaultTimeout,
		logger:  logger,
	}
}

func (a *Adapter) Key() string {
	return a.key
}

/*
Rehydrate 讀取快照並整包替換 store 狀態
沒有快照、內容損毀或版本不符時保留初始狀態，不回傳錯誤
只有 backend 本身失敗才回傳錯誤
*/
func (a *Adapter) Rehydrate(ctx context.Context, s *store.Store) error {
	data, err := a.backend.Load(ctx, a.key)
	if errors.Is(err, ErrNotFound) {
		a.logger.Debug().Str("key", a.key).Msg("no snapshot, start from initial state")
		return nil
	}
	if err != nil {
		return fmt.Errorf("load snapshot %s: %w", a.key, err)
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		a.logger.Warn().Err(err).Str("key", a.key).Msg("corrupt snapshot ignored")
		return nil
	}
	if snap.Version != snapshotVersion {
		a.logger.Warn().Int("version", snap.Version).Str("key", a.key).Msg("unknown snapshot version ignored")
		return nil
	}

	state := normalize(snap.State)
	s.Dispatch(store.RehydrateAction{State: state})
	return nil
}

// normalize 補齊缺漏欄位，loading 旗標不跨程序保留
func normalize(state store.State) store.State {
	state = state.Clone()
	state.Product.IsLoading = false
	if state.Product.PageNo == 0 {
		state.Product.PageNo = 1
	}
	return state
}

func (a *Adapter) Save(ctx context.Context, state store.State) error {
	data, err := json.Marshal(snapshot{
		Version: snapshotVersion,
		SavedAt: time.Now().UTC(),
		State:   state,
	})
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := a.backend.Save(ctx, a.key, data); err != nil {
		return fmt.Errorf("save snapshot %s: %w", a.key, err)
	}
	return nil
}

// Attach 每次 dispatch 後寫入快照，寫入失敗只記錄不影響 dispatch
func (a *Adapter) Attach(s *store.Store) (detach func()) {
	return s.Subscribe(func(action store.Action, state store.State) {
		ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
		defer cancel()
		if err := a.Save(ctx, state); err != nil {
			a.logger.Error().Err(err).Str("action", string(action.Type())).Msg("write-through snapshot failed")
		}
	})
}
