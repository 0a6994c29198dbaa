package main

import (
	"github.com/fuzzyvault/vaultbuild/cmd/vaultbuild/internal"
)

func main() {
	internal.Execute()
}
