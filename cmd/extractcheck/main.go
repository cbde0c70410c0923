// Copyright 2014 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// The extractcheck command determines whether selections of Go code can be
// extracted into new functions.
package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/godoctor/extractcheck/engine/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	exit := cli.RunContext(ctx, os.Stdin, os.Stdout, os.Stderr, os.Args)
	stop()
	os.Exit(exit)
}
