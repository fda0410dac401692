package mutation

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dropbox/godropbox/time2"
	"github.com/ebabcock80/orderdesk-mcp-sub002/internal/gateway/gwerrors"
	"github.com/ebabcock80/orderdesk-mcp-sub002/internal/gateway/upstream"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// 冲突重试预算；与上游客户端内部的瞬时重试预算相互独立
const (
	maxConflictAttempts = 5
	conflictBackoffBase = 100 * time.Millisecond
)

// Engine 订单变更引擎
// 上游不支持条件更新，只能走 fetch-merge-push 全量循环；
// 每次冲突都重新拉取最新状态再合并，绝不在陈旧副本上重放
type Engine interface {
	Apply(ctx context.Context, creds upstream.Credentials, orderID string, changeset map[string]interface{}) (map[string]interface{}, error)
}

type engine struct {
	client upstream.Client
	clock  time2.Clock
}

// NewEngine 创建订单变更引擎
//
//nolint:ireturn
func NewEngine(client upstream.Client, clock time2.Clock) Engine {
	return &engine{client: client, clock: clock}
}

// Apply 执行一次订单变更
// 每个周期：拉取当前状态 → 合并变更集 → 全量推送；
// 推送冲突则线性退避后重启整个周期，最多 5 次
func (e *engine) Apply(ctx context.Context, creds upstream.Credentials, orderID string, changeset map[string]interface{}) (map[string]interface{}, error) {
	path := "/orders/" + orderID

	for attempt := 1; attempt <= maxConflictAttempts; attempt++ {
		if attempt > 1 {
			e.clock.Sleep(conflictBackoffBase * time.Duration(attempt-1))
		}

		raw, err := e.client.Get(ctx, creds, path, nil)
		if err != nil {
			return nil, err
		}

		var current map[string]interface{}
		if err := json.Unmarshal(raw, &current); err != nil {
			return nil, errors.Wrap(err, "failed to decode upstream order")
		}
		if inner, ok := current["order"].(map[string]interface{}); ok {
			current = inner
		}

		merged := Merge(current, changeset)

		pushed, err := e.client.Put(ctx, creds, path, merged)
		if err == nil {
			var result map[string]interface{}
			if err := json.Unmarshal(pushed, &result); err != nil {
				return nil, errors.Wrap(err, "failed to decode upstream push response")
			}
			if inner, ok := result["order"].(map[string]interface{}); ok {
				result = inner
			}
			return result, nil
		}

		if !gwerrors.IsCode(err, gwerrors.CodeConflict) {
			return nil, err
		}

		log.Ctx(ctx).Warn().
			Str("order_id", orderID).
			Int("attempt", attempt).
			Msg("push conflict, refetching order")
	}

	return nil, gwerrors.NewConflict(
		fmt.Sprintf("order %s was modified concurrently too many times, giving up", orderID),
		maxConflictAttempts,
	)
}
