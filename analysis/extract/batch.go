// Copyright 2015 Auburn University. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package extract

import (
	"context"
	"runtime"

	"github.com/godoctor/extractcheck/analysis/tree"
	"github.com/godoctor/extractcheck/text"
	"golang.org/x/sync/errgroup"
)

// Batch analyzes several selections of the same tree concurrently.  Each
// selection is analyzed independently, as if by Analyze.  Cancellation of
// ctx is observed only between analyses: an analysis that has started runs
// to completion.  If ctx is cancelled before every selection has been
// analyzed, Batch returns ctx's error.
func Batch(ctx context.Context, t *tree.Tree, sels []text.Extent, opts ...Option) ([]*Verdict, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.workers < 1 {
		o.workers = runtime.GOMAXPROCS(0)
	}

	verdicts := make([]*Verdict, len(sels))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.workers)
	for i, sel := range sels {
		if gctx.Err() != nil {
			break
		}
		i, sel := i, sel
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			verdicts[i] = Analyze(t, sel, opts...)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	for _, v := range verdicts {
		if v == nil {
			return nil, ctx.Err()
		}
	}
	return verdicts, nil
}
