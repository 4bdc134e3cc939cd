// SPDX-License-Identifier: MIT
package main

import forksyncer "github.com/dynacylabs/github-fork-syncer/cmd/forksyncer"

// execute is overridable in tests.
var execute = forksyncer.Execute

func main() {
	execute()
}
