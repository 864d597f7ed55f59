package reorder

import "sync"

// List 调用方本地的兄弟顺序：current 为乐观应用后的顺序，
// lastKnownGood 为最近一次确认持久化的顺序。
type List struct {
	mu            sync.Mutex
	current       []uint
	lastKnownGood []uint
}

func NewList(ids []uint) *List {
	return &List{current: clone(ids), lastKnownGood: clone(ids)}
}

func clone(ids []uint) []uint {
	if ids == nil {
		return nil
	}
	out := make([]uint, len(ids))
	copy(out, ids)
	return out
}

func (l *List) Current() []uint {
	l.mu.Lock()
	defer l.mu.Unlock()
	return clone(l.current)
}

func (l *List) LastKnownGood() []uint {
	l.mu.Lock()
	defer l.mu.Unlock()
	return clone(l.lastKnownGood)
}

// Apply 乐观地替换本地顺序
func (l *List) Apply(ids []uint) {
	l.mu.Lock()
	l.current = clone(ids)
	l.mu.Unlock()
}

// Accept 持久化成功后把 ids 记为最新的已知正确顺序
func (l *List) Accept(ids []uint) {
	l.mu.Lock()
	l.lastKnownGood = clone(ids)
	l.mu.Unlock()
}

// Revert 回滚到最近一次已知正确的顺序并返回它
func (l *List) Revert() []uint {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.current = clone(l.lastKnownGood)
	return clone(l.current)
}

// Move 返回把 from 位置元素移动到 to 位置后的新切片，越界时原样返回副本
func Move(ids []uint, from, to int) []uint {
	out := clone(ids)
	if from < 0 || from >= len(out) || to < 0 || to >= len(out) || from == to {
		return out
	}
	id := out[from]
	out = append(out[:from], out[from+1:]...)
	out = append(out[:to], append([]uint{id}, out[to:]...)...)
	return out
}
