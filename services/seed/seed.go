// Copyright 2021 Dalarub & Ettrich GmbH - All Rights Reserved
// Unauthorized copying of this file, via any medium is strictly prohibited
// Proprietary and confidential
// info@dalarub.com
//

// Command seed prepares a fresh environment: it creates the catalog tables, inserts the
// built-in products and an admin user, and uploads sample images to the bucket.
//
// It reads the same environment as the data functions.
package main

import (
	"bytes"
	"context"
	"database/sql"
	"flag"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"mime"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/relabs-tech/showcase/api"
	"github.com/relabs-tech/showcase/catalog"
	"github.com/relabs-tech/showcase/core/config"
	"github.com/relabs-tech/showcase/core/csql"
	"github.com/relabs-tech/showcase/core/kss"
	"github.com/relabs-tech/showcase/core/logger"
	"github.com/relabs-tech/showcase/core/secrets"
)

func main() {
	adminEmail := flag.String("admin", "", "email of an admin user to create")
	imagesDir := flag.String("images", "", "directory with images to upload, generated samples are uploaded when empty")
	skipDB := flag.Bool("skip-db", false, "do not touch the database")
	skipImages := flag.Bool("skip-images", false, "do not upload images")
	flag.Parse()

	cfg, err := api.LoadConfiguration()
	if err != nil {
		logger.Default().WithError(err).Fatalln("Error 4701: cannot load configuration")
	}
	ctx := context.Background()
	rlog := logger.Default()

	if !*skipDB {
		n, err := seedDatabase(ctx, cfg, *adminEmail)
		if err != nil {
			rlog.WithError(err).Fatalln("Error 4702: cannot seed database")
		}
		rlog.Infof("seeded %d products into schema %s", n, cfg.DBSchema)
	}
	if !*skipImages {
		n, err := seedImages(ctx, cfg, *imagesDir)
		if err != nil {
			rlog.WithError(err).Fatalln("Error 4703: cannot upload images")
		}
		rlog.Infof("uploaded %d images to %s", n, cfg.ImagesBucket)
	}
}

func seedDatabase(ctx context.Context, cfg config.Configuration, adminEmail string) (int, error) {
	schema := cfg.DBSchema
	var reader config.SecretReader
	if cfg.DBSecretARN != "" {
		awsConfig, err := kss.LoadAWSConfig(ctx, cfg.AWSRegion, "", "")
		if err != nil {
			return 0, err
		}
		reader = secrets.NewFromConfig(awsConfig)
	}

	var seeded int
	err := csql.WithDB(ctx, api.DatabaseOpener(cfg, reader), func(db *sql.DB) error {
		if err := catalog.Migrate(ctx, db, schema); err != nil {
			return err
		}
		var users []catalog.SeedUser
		if adminEmail != "" {
			users = append(users, catalog.SeedUser{Email: adminEmail, DisplayName: strings.Split(adminEmail, "@")[0], Role: "admin"})
		}
		n, err := catalog.Seed(ctx, db, schema, users)
		seeded = n
		return err
	})
	return seeded, err
}

type sampleImage struct {
	name string
	data []byte
}

func seedImages(ctx context.Context, cfg config.Configuration, dir string) (int, error) {
	store, err := kss.NewS3(ctx, kss.S3Configuration{
		AWSBucketName: cfg.ImagesBucket,
		AWSRegion:     cfg.AWSRegion,
		Endpoint:      cfg.S3Endpoint,
	})
	if err != nil {
		return 0, err
	}

	var images []sampleImage
	if dir == "" {
		images, err = generatedImages()
	} else {
		images, err = imagesFromDir(dir)
	}
	if err != nil {
		return 0, err
	}
	for _, img := range images {
		contentType := mime.TypeByExtension(filepath.Ext(img.name))
		if err := store.Upload(ctx, path.Join(cfg.ImagesPrefix, img.name), bytes.NewReader(img.data), contentType); err != nil {
			return 0, err
		}
	}
	return len(images), nil
}

func imagesFromDir(dir string) ([]sampleImage, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var images []sampleImage
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, err
		}
		images = append(images, sampleImage{name: e.Name(), data: data})
	}
	return images, nil
}

// generatedImages renders a few single colored images
func generatedImages() ([]sampleImage, error) {
	colors := []color.RGBA{
		{R: 0x1f, G: 0x77, B: 0xb4, A: 0xff},
		{R: 0xff, G: 0x7f, B: 0x0e, A: 0xff},
		{R: 0x2c, G: 0xa0, B: 0x2c, A: 0xff},
		{R: 0xd6, G: 0x27, B: 0x28, A: 0xff},
		{R: 0x94, G: 0x67, B: 0xbd, A: 0xff},
	}
	var images []sampleImage
	for i, c := range colors {
		img := image.NewRGBA(image.Rect(0, 0, 320, 200))
		for y := 0; y < 200; y++ {
			for x := 0; x < 320; x++ {
				img.SetRGBA(x, y, c)
			}
		}
		var buf bytes.Buffer
		if err := png.Encode(&buf, img); err != nil {
			return nil, err
		}
		images = append(images, sampleImage{name: fmt.Sprintf("sample-%d.png", i+1), data: buf.Bytes()})
	}
	return images, nil
}
