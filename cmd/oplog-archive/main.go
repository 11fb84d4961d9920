package main

import (
	"bytes"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"reception-dedup/oplog"
	"reception-dedup/storage"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"go.uber.org/zap"
)

const archivePrefix = "oplog/"

type ArchiveConfig struct {
	LogDir          string `envconfig:"LOG_DIR" default:"logs"`
	ArchiveBucket   string `envconfig:"ARCHIVE_S3_BUCKET" required:"true"`
	ArchiveEndpoint string `envconfig:"ARCHIVE_S3_ENDPOINT" required:"true"`
	ArchiveKey      string `envconfig:"ARCHIVE_S3_ACCESS_KEY" required:"true"`
	ArchiveSecret   string `envconfig:"ARCHIVE_S3_SECRET_KEY" required:"true"`
	ArchiveRegion   string `envconfig:"ARCHIVE_S3_REGION" default:"us-east-1"`
	KeepArchives    int    `envconfig:"KEEP_ARCHIVES" default:"30"`
}

// archiveClient ist die Teilmenge des S3-Clients für Upload und Rotation.
type archiveClient interface {
	storage.Uploader
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

func main() {
	logging, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "can't initialize zap logger: %v\n", err)
		os.Exit(1)
	}
	defer logging.Sync()

	logging.Info("Starte Archivierung des Operations-Logs...")

	_ = godotenv.Load()
	var cfg ArchiveConfig
	if err := envconfig.Process("", &cfg); err != nil {
		logging.Fatal("Fehler beim Laden der Konfiguration", zap.Error(err))
	}

	ctx := context.Background()
	client, err := storage.NewS3Client(ctx, cfg.ArchiveEndpoint, cfg.ArchiveRegion, cfg.ArchiveKey, cfg.ArchiveSecret)
	if err != nil {
		logging.Fatal("Fehler beim Erstellen des S3-Clients", zap.Error(err))
	}

	n, err := archiveRotatedLogs(ctx, client, cfg, logging)
	if err != nil {
		logging.Fatal("Fehler beim Archivieren", zap.Error(err))
	}
	if err := rotateArchives(ctx, client, cfg, logging); err != nil {
		logging.Fatal("Fehler bei der Rotation alter Archive", zap.Error(err))
	}

	logging.Info("Archivierung erfolgreich abgeschlossen.", zap.Int("files", n))
}

// rotatedLogs liefert die rotierten Backups des Operations-Logs, älteste zuerst.
// Die aktive Datei wird nie angefasst.
func rotatedLogs(dir string) ([]string, error) {
	ext := filepath.Ext(oplog.FileName)
	prefix := strings.TrimSuffix(oplog.FileName, ext) + "-"
	matches, err := filepath.Glob(filepath.Join(dir, prefix+"*"+ext))
	if err != nil {
		return nil, err
	}
	sort.Strings(matches)
	return matches, nil
}

// archiveRotatedLogs komprimiert jedes rotierte Backup, lädt es hoch und
// entfernt die lokale Datei erst nach erfolgreichem Upload.
func archiveRotatedLogs(ctx context.Context, client archiveClient, cfg ArchiveConfig, logging *zap.Logger) (int, error) {
	files, err := rotatedLogs(cfg.LogDir)
	if err != nil {
		return 0, err
	}
	if len(files) == 0 {
		logging.Info("Keine rotierten Logdateien vorhanden.")
		return 0, nil
	}

	for i, path := range files {
		data, err := gzipFile(path)
		if err != nil {
			return i, fmt.Errorf("compress %s: %w", path, err)
		}
		key := archivePrefix + filepath.Base(path) + ".gz"
		link, err := storage.UploadFile(ctx, client, cfg.ArchiveEndpoint, cfg.ArchiveBucket, key, "application/gzip", data)
		if err != nil {
			return i, fmt.Errorf("upload %s: %w", key, err)
		}
		if err := os.Remove(path); err != nil {
			return i + 1, fmt.Errorf("remove %s: %w", path, err)
		}
		logging.Info("Logdatei archiviert", zap.String("file", filepath.Base(path)), zap.String("link", link))
	}
	return len(files), nil
}

func gzipFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var buf bytes.Buffer
	gzipWriter := gzip.NewWriter(&buf)
	gzipWriter.Name = filepath.Base(path)
	if _, err := io.Copy(gzipWriter, f); err != nil {
		return nil, err
	}
	if err := gzipWriter.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// rotateArchives behält die neuesten KeepArchives Objekte unter archivePrefix.
func rotateArchives(ctx context.Context, client archiveClient, cfg ArchiveConfig, logging *zap.Logger) error {
	output, err := client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket: aws.String(cfg.ArchiveBucket),
		Prefix: aws.String(archivePrefix),
	})
	if err != nil {
		return err
	}

	if len(output.Contents) <= cfg.KeepArchives {
		logging.Info("Keine Rotation nötig", zap.Int("archives", len(output.Contents)), zap.Int("keep", cfg.KeepArchives))
		return nil
	}

	sort.Slice(output.Contents, func(i, j int) bool {
		return lastModified(output.Contents[i].LastModified).After(lastModified(output.Contents[j].LastModified))
	})

	for _, obj := range output.Contents[cfg.KeepArchives:] {
		logging.Info("Lösche altes Archiv", zap.String("key", aws.ToString(obj.Key)))
		_, err := client.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(cfg.ArchiveBucket),
			Key:    obj.Key,
		})
		if err != nil {
			logging.Error("Fehler beim Löschen", zap.String("key", aws.ToString(obj.Key)), zap.Error(err))
		}
	}
	return nil
}

func lastModified(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}
