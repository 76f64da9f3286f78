package main

import (
	"log/slog"
	"os"

	"github.com/gin-gonic/gin"

	"auctionhouse/api"
)

func main() {
	args := ParseArgs()
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: args.LogLevel})))
	if err := args.Validate(); err != nil {
		slog.Error("Invalid arguments", slog.Any("error", err))
		os.Exit(1)
	}
	server, err := api.NewServer(args.ServerConfig)
	if err != nil {
		panic(err)
	}
	defer server.Close()

	router := gin.Default()
	server.RegisterHandlers(router)
	slog.Info("Start server", slog.String("url", args.ServerURL), slog.String("store", args.ServerConfig.StoreBackend))
	if err := router.Run(args.ServerURL); err != nil {
		panic(err)
	}
}
