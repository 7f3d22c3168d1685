// cmd/pipeline/main.go
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/woodlandforecast/backend-go/internal/config"
	"github.com/woodlandforecast/backend-go/internal/dataset"
	"github.com/woodlandforecast/backend-go/internal/pipeline"
	"github.com/woodlandforecast/backend-go/internal/storage"
	"github.com/woodlandforecast/backend-go/pkg/logger"
)

func newDatasetsDirFlag(def string) *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "datasets-dir",
		Usage:   "Directory holding the snapshot CSV tables",
		Value:   def,
		EnvVars: []string{"DATASETS_DIR"},
	}
}

func newRunner(c *cli.Context) *pipeline.Runner {
	cfg := config.Load().Pipeline
	if dir := c.String("datasets-dir"); dir != "" {
		cfg.DatasetsDir = dir
	}
	return pipeline.NewRunner(dataset.NewStore(cfg.DatasetsDir), cfg)
}

func newObjectStorage() (storage.ObjectStorage, string, error) {
	cfg := config.Load().Storage
	client, err := storage.NewMinioClient(cfg)
	if err != nil {
		return nil, "", err
	}
	return client, cfg.Prefix, nil
}

func main() {
	cfg := config.Load()
	logger.SetLevel(cfg.Server.Mode)

	stageCommands := make([]*cli.Command, 0, len(pipeline.Stages()))
	for _, stage := range pipeline.Stages() {
		stage := stage
		stageCommands = append(stageCommands, &cli.Command{
			Name:  stage,
			Usage: fmt.Sprintf("Run only the %s stage", stage),
			Flags: []cli.Flag{newDatasetsDirFlag(cfg.Pipeline.DatasetsDir)},
			Action: func(c *cli.Context) error {
				_, err := newRunner(c).RunStage(c.Context, stage)
				return err
			},
		})
	}

	app := &cli.App{
		Name:  "pipeline",
		Usage: "Run the demand cascade over the snapshot tables",
		Commands: append([]*cli.Command{
			{
				Name:  "run",
				Usage: "Run every stage in dependency order",
				Flags: []cli.Flag{newDatasetsDirFlag(cfg.Pipeline.DatasetsDir)},
				Action: func(c *cli.Context) error {
					results, err := newRunner(c).RunAll(c.Context)
					for _, res := range results {
						fmt.Printf("%-24s %8d rows  %4d warnings  %s\n",
							res.Stage, res.OutputRows, res.Warnings, res.Duration.Round(1e6))
					}
					return err
				},
			},
			{
				Name:  "pull",
				Usage: "Download input snapshots from object storage",
				Flags: []cli.Flag{newDatasetsDirFlag(cfg.Pipeline.DatasetsDir)},
				Action: func(c *cli.Context) error {
					client, prefix, err := newObjectStorage()
					if err != nil {
						return err
					}
					_, err = storage.PullSnapshots(c.Context, client, prefix, c.String("datasets-dir"))
					return err
				},
			},
			{
				Name:  "publish",
				Usage: "Upload the snapshot directory to object storage",
				Flags: []cli.Flag{newDatasetsDirFlag(cfg.Pipeline.DatasetsDir)},
				Action: func(c *cli.Context) error {
					client, prefix, err := newObjectStorage()
					if err != nil {
						return err
					}
					_, err = storage.PublishSnapshots(c.Context, client, prefix, c.String("datasets-dir"))
					return err
				},
			},
		}, stageCommands...),
	}

	if err := app.Run(os.Args); err != nil {
		logger.Log.Fatal().Err(err).Msg("pipeline failed")
	}
}
