package bufpool

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPageAllocation(t *testing.T) {
	t.Run("AllocatesExactSize", func(t *testing.T) {
		p := NewPool(4096)
		buf := p.Get()
		defer p.Put(buf)

		assert.Equal(t, 4096, len(buf))
		assert.Equal(t, 4096, cap(buf))
	})

	t.Run("DefaultsNonPositiveSize", func(t *testing.T) {
		p := NewPool(0)
		assert.Equal(t, DefaultPageSize, p.PageSize())

		buf := p.Get()
		defer p.Put(buf)
		assert.Equal(t, DefaultPageSize, len(buf))
	})

	t.Run("FreshBufferIsZeroed", func(t *testing.T) {
		buf := NewPool(128).Get()
		for _, b := range buf {
			require.Zero(t, b)
		}
	})
}

func TestPageRecycling(t *testing.T) {
	t.Run("RecycledBufferIsZeroed", func(t *testing.T) {
		p := NewPool(256)

		buf := p.Get()
		for i := range buf {
			buf[i] = 0xAA
		}
		p.Put(buf)

		// sync.Pool gives no reuse guarantee, so only check that
		// whatever comes back reads as an empty page.
		again := p.Get()
		for _, b := range again {
			require.Zero(t, b)
		}
	})

	t.Run("DropsMismatchedCapacity", func(t *testing.T) {
		p := NewPool(256)

		assert.NotPanics(t, func() {
			p.Put(make([]byte, 64))
			p.Put(nil)
		})
	})
}

func TestSharedPools(t *testing.T) {
	t.Run("SamePoolPerSize", func(t *testing.T) {
		assert.Same(t, ForSize(512), ForSize(512))
		assert.NotSame(t, ForSize(512), ForSize(1024))
	})

	t.Run("GetAndPutRoundTrip", func(t *testing.T) {
		buf := Get(512)
		require.Equal(t, 512, len(buf))
		buf[0] = 1
		Put(buf)

		again := Get(512)
		assert.Zero(t, again[0])
	})

	t.Run("PutIgnoresForeignBuffer", func(t *testing.T) {
		assert.NotPanics(t, func() {
			Put(make([]byte, 3))
			Put(nil)
		})
	})
}

func TestConcurrentUse(t *testing.T) {
	p := NewPool(1024)

	var wg sync.WaitGroup
	for n := 0; n < 16; n++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for n := 0; n < 100; n++ {
				buf := p.Get()
				buf[0] = 1
				p.Put(buf)
			}
		}()
	}
	wg.Wait()
}
