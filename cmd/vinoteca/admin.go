package main

import (
	"fmt"
	"time"

	"vinoteca/internal/catalog"
	"vinoteca/internal/database"

	"github.com/urfave/cli/v2"
)

func migrateCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "apply database schema migrations",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "down", Usage: "roll back every migration instead"},
		},
		Action: func(c *cli.Context) error {
			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}
			if c.Bool("down") {
				logger.Warn().Msg("rolling back all migrations")
				return database.MigrateDown(cfg.Database.ConnectionString(), logger)
			}
			return database.Migrate(cfg.Database.ConnectionString(), logger)
		},
	}
}

func importCatalogCommand() *cli.Command {
	return &cli.Command{
		Name:  "import-catalog",
		Usage: "upsert wines from a YAML catalog file (local path or S3 key, .gz accepted)",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "file", Aliases: []string{"f"}, Usage: "catalog file", Required: true},
		},
		Action: func(c *cli.Context) error {
			e, err := connect(c.Context)
			if err != nil {
				return err
			}
			defer e.pool.Close()

			fileLoader := catalog.NewFileLoader(e.logger)
			var s3Loader catalog.Loader
			if e.cfg.S3.Enabled {
				s3Loader, err = catalog.NewS3Loader(c.Context, e.cfg.S3.Bucket, e.cfg.S3.Region, e.logger)
				if err != nil {
					e.logger.Warn().Err(err).Msg("failed to initialise S3 loader, using local files only")
				}
			}
			loader := catalog.NewFallbackLoader(s3Loader, fileLoader, e.cfg.S3.Prefix, e.cfg.S3.Enabled && s3Loader != nil, e.logger)

			n, err := catalog.NewImporter(loader, e.products, e.logger).Import(c.Context, c.String("file"))
			if err != nil {
				return err
			}
			fmt.Fprintf(c.App.Writer, "imported %d wines\n", n)
			return nil
		},
	}
}

func expireOrdersCommand() *cli.Command {
	return &cli.Command{
		Name:  "expire-orders",
		Usage: "expire pending orders whose pickup window has closed",
		Action: func(c *cli.Context) error {
			e, err := connect(c.Context)
			if err != nil {
				return err
			}
			defer e.pool.Close()

			n, err := e.orders.ExpireOverdue(c.Context, time.Now())
			fmt.Fprintf(c.App.Writer, "expired %d orders\n", n)
			return err
		},
	}
}
