package main

import (
	"context"
	"log"
	"time"

	"github.com/gin-gonic/gin"

	"attendgate.com/attendgate/audit"
	"attendgate.com/attendgate/core"
	"attendgate.com/attendgate/infrastructure/archive"
	"attendgate.com/attendgate/infrastructure/communication"
	"attendgate.com/attendgate/infrastructure/devops"
	"attendgate.com/attendgate/rtdb"
	"attendgate.com/attendgate/web/handlers"
)

func main() {
	ctx := context.Background()

	cfg, err := devops.Load(ctx)
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	var tokens rtdb.TokenSource
	if cfg.Store.CredentialsFile != "" {
		sa, err := rtdb.LoadServiceAccount(cfg.Store.CredentialsFile)
		if err != nil {
			log.Fatalf("failed to load service account: %v", err)
		}
		tokens = sa
	}
	store := rtdb.New(cfg.Store.BaseURL, tokens, time.Duration(cfg.Store.TimeoutSeconds)*time.Second)

	service := core.NewService(store, cfg.Schedule(), time.Duration(cfg.Suppression.WindowSeconds)*time.Second)

	if cfg.Audit.DSN != "" {
		recorder, err := audit.Open(cfg.Audit.DSN, cfg.Audit.MaxConnections)
		if err != nil {
			log.Fatalf("failed to open audit db: %v", err)
		}
		defer recorder.Close()
		service.Recorder = recorder
	}

	if cfg.Archive.Bucket != "" {
		service.Archiver = archive.NewS3Archiver(cfg.Archive.Bucket)
	}

	if cfg.Slack.Enabled {
		service.Notifier = communication.ConnectSlack()
	}

	env := &handlers.Env{
		Service:       service,
		Store:         store,
		ArchiveBucket: cfg.Archive.Bucket,
	}

	r := gin.Default()
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	r.POST("/plate", env.PlateHandler)
	r.POST("/credential", env.CredentialHandler)

	r.GET("/status", env.StatusHandler)
	r.GET("/latest/plate", env.LatestPlateHandler)
	r.GET("/latest/credential", env.LatestCredentialHandler)
	r.GET("/suppression", env.SuppressionHandler)

	r.GET("/reports/daily", env.DailyReportHandler)
	r.GET("/archive", env.ArchiveListHandler)
	r.GET("/archive/image", env.ArchiveImageHandler)

	debug := r.Group("/debug")
	{
		debug.POST("/suppression/clear", env.ClearSuppressionHandler)
		debug.GET("/resolve/:key", env.ResolveHandler)
	}

	r.Run(cfg.Server.Addr)
}
