package main

import (
	"github.com/chikoro/feeledger/internal/server"
	"go.uber.org/fx"
)

func main() {
	fx.New(
		server.Module,
	).Run()
}
