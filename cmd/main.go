package main

import (
	"backend/config"
	"backend/routes"

	"github.com/sirupsen/logrus"
)

func main() {
	config.InitDB()
	r := routes.SetupRouter()
	logrus.Info("gutsafe backend listening on :8080")
	if err := r.Run(":8080"); err != nil {
		logrus.Fatalf("server exited: %v", err)
	}
}
