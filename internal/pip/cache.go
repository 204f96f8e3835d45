package pip

import "container/list"

// CacheCapacity 单次调用内扫描线交点缓存的最大条目数
const CacheCapacity = 1024

// scanKey 扁平复合键：量化 y + 环下标
type scanKey struct {
	y    int64
	ring int
}

type scanEntry struct {
	k  scanKey
	xs []float64
}

// scanCache 调用级 LRU：只在一次分类内存活，由单一执行路径独占，不加锁
// 淘汰严格按最近最少使用，结果可复现。
type scanCache struct {
	cap          int
	lst          *list.List
	dict         map[scanKey]*list.Element
	hits, misses int
}

func newScanCache(capacity int) *scanCache {
	if capacity < 1 {
		capacity = 1
	}
	return &scanCache{cap: capacity, lst: list.New(), dict: make(map[scanKey]*list.Element, capacity)}
}

func (c *scanCache) Get(k scanKey) ([]float64, bool) {
	if e, ok := c.dict[k]; ok {
		c.lst.MoveToFront(e)
		c.hits++
		return e.Value.(*scanEntry).xs, true
	}
	c.misses++
	return nil, false
}

func (c *scanCache) Set(k scanKey, xs []float64) {
	if e, ok := c.dict[k]; ok {
		e.Value.(*scanEntry).xs = xs
		c.lst.MoveToFront(e)
		return
	}
	c.dict[k] = c.lst.PushFront(&scanEntry{k: k, xs: xs})
	for c.lst.Len() > c.cap {
		back := c.lst.Back()
		delete(c.dict, back.Value.(*scanEntry).k)
		c.lst.Remove(back)
	}
}

func (c *scanCache) Len() int { return c.lst.Len() }
