package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/paiban/visitcare/internal/cli"
)

func main() {
	if err := cli.NewRootCmd().Execute(); err != nil {
		// 拒绝结果已输出，只设置退出码
		if errors.Is(err, cli.ErrRejected) {
			os.Exit(2)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
