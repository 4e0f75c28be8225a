// Copyright 2018 Benjamin Estes. All rights reserved.  Use of this
// source code is governed by an MIT-style license that can be found
// in the LICENSE file.

package version

import (
	"fmt"
	"runtime"
)

// Version is overridden at build time with -ldflags.
var Version = "v0.1.0"

// UserAgent contains a sane user agent per RFC7231 to use as a default
func UserAgent() string {
	return fmt.Sprintf("webimport/%s (%s/%s)", Version, runtime.GOOS, runtime.GOARCH)
}
