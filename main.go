package main

import (
	"context"

	"github.com/tabledriver/typeschema/cmd"
)

func main() {
	cmd.Execute(context.Background())
}
