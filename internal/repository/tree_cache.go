package repository

import (
	"context"
	"curriculum_backend/internal/model"
	"curriculum_backend/pkg/logger"
	"curriculum_backend/pkg/monitoring"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// TreeCache 缓存完整课程树（原始翻译行），写操作提交后失效。
// Redis 为 nil 时所有读取直接回源。
type TreeCache struct {
	Redis  *redis.Client
	TTL    time.Duration
	prefix string
	group  singleflight.Group
}

func NewTreeCache(rdb *redis.Client, ttl time.Duration) *TreeCache {
	return &TreeCache{
		Redis:  rdb,
		TTL:    ttl,
		prefix: "curriculum:course:",
	}
}

func (c *TreeCache) key(courseID uint) string {
	return c.prefix + strconv.FormatUint(uint64(courseID), 10)
}

// versionKey 每次失效自增；回填时版本已变说明加载期间有写操作提交，放弃回填
func (c *TreeCache) versionKey(courseID uint) string {
	return c.key(courseID) + ":v"
}

// fillScript KEYS[1]=树 KEYS[2]=版本；ARGV[1]=加载前版本 ARGV[2]=内容 ARGV[3]=过期毫秒（0 不过期）
var fillScript = redis.NewScript(`
local v = redis.call('GET', KEYS[2]) or '0'
if v ~= ARGV[1] then
	return 0
end
if tonumber(ARGV[3]) > 0 then
	redis.call('SET', KEYS[1], ARGV[2], 'PX', ARGV[3])
else
	redis.call('SET', KEYS[1], ARGV[2])
end
return 1
`)

func (c *TreeCache) version(ctx context.Context, courseID uint) (string, error) {
	v, err := c.Redis.Get(ctx, c.versionKey(courseID)).Result()
	if err == redis.Nil {
		return "0", nil
	}
	return v, err
}

// Get 命中缓存直接返回；未命中时同一课程同一版本的并发加载只执行一次 load。
// 加载前记录版本，回填只在版本未变时写入，避免旧树覆盖更新后的失效。
func (c *TreeCache) Get(ctx context.Context, courseID uint, load func() (*model.Course, error)) (*model.Course, error) {
	if c == nil || c.Redis == nil {
		return load()
	}

	ver, err := c.version(ctx, courseID)
	if err != nil {
		// 缓存故障不影响读取
		logger.Log.Warn("course tree cache unavailable", zap.Error(err))
		monitoring.TreeCacheLookups.WithLabelValues("error").Inc()
		return load()
	}

	raw, err := c.Redis.Get(ctx, c.key(courseID)).Bytes()
	if err == nil {
		var course model.Course
		if err := json.Unmarshal(raw, &course); err == nil {
			monitoring.TreeCacheLookups.WithLabelValues("hit").Inc()
			return &course, nil
		}
		logger.Log.Warn("discarding undecodable course tree cache entry", zap.Uint("courseId", courseID))
	} else if err != redis.Nil {
		logger.Log.Warn("course tree cache unavailable", zap.Error(err))
	}
	monitoring.TreeCacheLookups.WithLabelValues("miss").Inc()

	v, err, _ := c.group.Do(fmt.Sprintf("%d:%s", courseID, ver), func() (interface{}, error) {
		course, err := load()
		if err != nil {
			return nil, err
		}
		c.fill(ctx, courseID, ver, course)
		return course, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*model.Course), nil
}

func (c *TreeCache) fill(ctx context.Context, courseID uint, ver string, course *model.Course) {
	payload, err := json.Marshal(course)
	if err != nil {
		return
	}
	keys := []string{c.key(courseID), c.versionKey(courseID)}
	stored, err := fillScript.Run(ctx, c.Redis, keys, ver, payload, c.TTL.Milliseconds()).Int()
	if err != nil {
		logger.Log.Warn("failed to populate course tree cache", zap.Error(err))
		return
	}
	if stored == 0 {
		logger.Log.Debug("course changed while loading, skip cache fill", zap.Uint("courseId", courseID))
	}
}

// Invalidate 在事务提交后调用：先推进版本再删除缓存
func (c *TreeCache) Invalidate(ctx context.Context, courseID uint) {
	if c == nil || c.Redis == nil {
		return
	}
	_, err := c.Redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, c.versionKey(courseID))
		pipe.Del(ctx, c.key(courseID))
		return nil
	})
	if err != nil {
		logger.Log.Error("failed to invalidate course tree cache", zap.Uint("courseId", courseID), zap.Error(err))
	}
}
