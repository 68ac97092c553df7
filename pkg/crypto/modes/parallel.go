package modes

import "golang.org/x/sync/errgroup"

// parallel splits blocks into at most c.workers contiguous ranges and runs
// fn on each. fn must only touch the output of its own range.
func (c *Context) parallel(blocks int, fn func(lo, hi int) error) error {
	if blocks == 0 {
		return nil
	}
	if c.workers <= 1 || blocks < 2*c.workers {
		return fn(0, blocks)
	}

	per := (blocks + c.workers - 1) / c.workers
	var g errgroup.Group
	g.SetLimit(c.workers)
	for lo := 0; lo < blocks; lo += per {
		hi := min(lo+per, blocks)
		g.Go(func() error {
			return fn(lo, hi)
		})
	}
	return g.Wait()
}
