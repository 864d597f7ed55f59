package reorder

import (
	"context"
	"curriculum_backend/pkg/logger"
	"sync"
	"time"

	"go.uber.org/zap"
)

// DefaultWindow 拖拽排序的默认防抖窗口
const DefaultWindow = 400 * time.Millisecond

// CommitFunc 持久化一组完整顺序，如 CurriculumService.ReorderUnits 的闭包
type CommitFunc func(ctx context.Context, ids []uint) error

type Options struct {
	Window time.Duration
	// OnError 每次提交失败调用一次；视图已回滚
	OnError func(err error)
}

// Coalescer 把窗口内的多次排序意图合并为一次提交，只提交最新的完整顺序。
// 新意图到达时替换尚未触发的定时器；失败时回滚到已知正确顺序，不自动重试。
type Coalescer struct {
	ctx     context.Context
	list    *List
	commit  CommitFunc
	window  time.Duration
	onError func(error)

	mu      sync.Mutex
	timer   *time.Timer
	gen     uint64
	pending []uint
	stopped bool
	// epoch 每次提交失败加一；取出早于失败的意图不再提交
	epoch uint64

	// 提交串行执行，保证后提交的顺序最终生效
	commitMu sync.Mutex
}

func NewCoalescer(ctx context.Context, list *List, commit CommitFunc, opts Options) *Coalescer {
	if opts.Window <= 0 {
		opts.Window = DefaultWindow
	}
	return &Coalescer{
		ctx:     ctx,
		list:    list,
		commit:  commit,
		window:  opts.Window,
		onError: opts.OnError,
	}
}

// Submit 乐观应用 ids 并（重新）启动防抖定时器
func (c *Coalescer) Submit(ids []uint) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stopped {
		return
	}
	c.list.Apply(ids)
	c.pending = clone(ids)
	c.gen++
	if c.timer != nil {
		c.timer.Stop()
	}
	gen := c.gen
	c.timer = time.AfterFunc(c.window, func() { c.fire(gen) })
}

// take 取出待提交顺序及当时的 epoch；gen 不匹配说明定时器已被替换
func (c *Coalescer) take(gen uint64, force bool) ([]uint, uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stopped || c.pending == nil || (!force && gen != c.gen) {
		return nil, 0
	}
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	ids := c.pending
	c.pending = nil
	return ids, c.epoch
}

func (c *Coalescer) fire(gen uint64) {
	if ids, epoch := c.take(gen, false); ids != nil {
		c.run(ids, epoch)
	}
}

// Flush 立即提交待处理的顺序，没有待处理内容时返回 nil
func (c *Coalescer) Flush() error {
	ids, epoch := c.take(0, true)
	if ids == nil {
		return nil
	}
	return c.run(ids, epoch)
}

// Stop 取消尚未触发的提交；之后的 Submit 被忽略
func (c *Coalescer) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopped = true
	c.pending = nil
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

func (c *Coalescer) run(ids []uint, epoch uint64) error {
	c.commitMu.Lock()
	defer c.commitMu.Unlock()

	// 等待期间前一次提交失败，视图已回滚，这次意图基于被丢弃的顺序
	c.mu.Lock()
	discarded := epoch != c.epoch
	c.mu.Unlock()
	if discarded {
		logger.Log.Debug("dropping reorder intent queued behind a failed commit", zap.Uints("ids", ids))
		return nil
	}

	err := c.commit(c.ctx, ids)
	if err == nil {
		c.list.Accept(ids)
		return nil
	}

	// 失败：丢弃在提交期间到达的意图，视图回到已知正确顺序
	c.mu.Lock()
	c.pending = nil
	c.gen++
	c.epoch++
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.mu.Unlock()

	reverted := c.list.Revert()
	logger.Log.Warn("reorder commit failed, reverted to last known good order",
		zap.Uints("attempted", ids), zap.Uints("reverted", reverted), zap.Error(err))
	if c.onError != nil {
		c.onError(err)
	}
	return err
}
