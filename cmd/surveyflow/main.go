package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

// @title						surveyflow API
// @version					1.0
// @description				Paginated survey sessions: answers, validation, progress and submission.
// @BasePath					/
// @securityDefinitions.apikey	SessionToken
// @in							header
// @name						Authorization
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
