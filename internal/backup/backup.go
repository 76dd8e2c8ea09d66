// Package backup ships nightly encrypted snapshots of the SQLite
// database to S3-compatible storage. It is optional: without a bucket
// and credentials the manager stays disabled.
package backup

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// snapshotHour is the UTC hour of the daily snapshot.
const snapshotHour = 3

const keyPrefix = "snapshots/"

// s3API is the slice of the S3 client the manager uses, kept narrow for
// tests.
type s3API interface {
	PutObject(ctx context.Context, input *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, input *s3.GetObjectInput, opts ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	ListObjectsV2(ctx context.Context, input *s3.ListObjectsV2Input, opts ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	DeleteObject(ctx context.Context, input *s3.DeleteObjectInput, opts ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// Config holds storage coordinates and the encryption passphrase.
type Config struct {
	Bucket     string
	Endpoint   string
	Region     string
	AccessKey  string
	SecretKey  string
	Passphrase string

	DBPath        string
	RetentionDays int
}

// Enabled reports whether snapshots can run at all.
func (c Config) Enabled() bool {
	return c.Bucket != "" && c.AccessKey != "" && c.SecretKey != "" && c.Passphrase != ""
}

type Manager struct {
	cfg    Config
	db     *sql.DB
	client s3API
	logger *slog.Logger

	mu       sync.Mutex
	lastRun  time.Time
	lastErr  error
	lastSize int64
}

func NewManager(cfg Config, db *sql.DB, logger *slog.Logger) *Manager {
	if cfg.RetentionDays <= 0 {
		cfg.RetentionDays = 30
	}
	m := &Manager{cfg: cfg, db: db, logger: logger}
	if cfg.Enabled() {
		m.client = newS3Client(cfg)
	}
	return m
}

func newS3Client(cfg Config) *s3.Client {
	opts := s3.Options{
		Region:       cfg.Region,
		Credentials:  credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		UsePathStyle: true,
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
	}
	return s3.New(opts)
}

// Run drives the daily schedule until ctx is canceled. It is a no-op
// when the manager is disabled.
func (m *Manager) Run(ctx context.Context) {
	if m.client == nil {
		m.logger.Info("backups disabled")
		return
	}

	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			now := time.Now().UTC()
			if now.Hour() != snapshotHour || now.Minute() != 0 {
				continue
			}
			if err := m.Snapshot(ctx); err != nil {
				m.logger.Error("snapshot failed", "error", err)
				continue
			}
			if err := m.prune(ctx, now); err != nil {
				m.logger.Error("pruning old snapshots failed", "error", err)
			}
		}
	}
}

// Snapshot checkpoints the WAL, encrypts a copy of the database, and
// uploads it. Safe to call manually while the server is live.
func (m *Manager) Snapshot(ctx context.Context) error {
	if m.client == nil {
		return fmt.Errorf("backups not configured")
	}

	if _, err := m.db.ExecContext(ctx, "PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		return m.finish(0, fmt.Errorf("wal checkpoint: %w", err))
	}

	plaintext, err := os.ReadFile(m.cfg.DBPath)
	if err != nil {
		return m.finish(0, fmt.Errorf("read database: %w", err))
	}

	sealed, err := Encrypt(plaintext, m.cfg.Passphrase)
	if err != nil {
		return m.finish(0, fmt.Errorf("encrypt snapshot: %w", err))
	}

	key := keyPrefix + "backup-" + time.Now().UTC().Format("2006-01-02T150405Z") + ".db.enc"
	_, err = m.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(m.cfg.Bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(sealed),
		ContentLength: aws.Int64(int64(len(sealed))),
	})
	if err != nil {
		return m.finish(0, fmt.Errorf("upload snapshot: %w", err))
	}

	m.logger.Info("snapshot uploaded", "key", key, "bytes", len(sealed))
	return m.finish(int64(len(sealed)), nil)
}

func (m *Manager) finish(size int64, err error) error {
	m.mu.Lock()
	m.lastRun = time.Now().UTC()
	m.lastErr = err
	if err == nil {
		m.lastSize = size
	}
	m.mu.Unlock()
	return err
}

// Status reports the outcome of the most recent snapshot attempt.
func (m *Manager) Status() (lastRun time.Time, lastSize int64, lastErr error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastRun, m.lastSize, m.lastErr
}

// prune deletes snapshots older than the retention window.
func (m *Manager) prune(ctx context.Context, now time.Time) error {
	cutoff := now.AddDate(0, 0, -m.cfg.RetentionDays)

	out, err := m.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket: aws.String(m.cfg.Bucket),
		Prefix: aws.String(keyPrefix),
	})
	if err != nil {
		return fmt.Errorf("list snapshots: %w", err)
	}

	for _, obj := range out.Contents {
		if obj.LastModified == nil || !obj.LastModified.Before(cutoff) {
			continue
		}
		_, err := m.client.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(m.cfg.Bucket),
			Key:    obj.Key,
		})
		if err != nil {
			return fmt.Errorf("delete %s: %w", aws.ToString(obj.Key), err)
		}
		m.logger.Info("pruned snapshot", "key", aws.ToString(obj.Key))
	}
	return nil
}

// Restore downloads and decrypts a snapshot next to the live database.
// The caller swaps the files in and restarts; a running server never
// overwrites its own open database.
func (m *Manager) Restore(ctx context.Context, key string) (string, error) {
	if m.client == nil {
		return "", fmt.Errorf("backups not configured")
	}

	obj, err := m.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(m.cfg.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return "", fmt.Errorf("download snapshot: %w", err)
	}
	defer obj.Body.Close()

	sealed, err := io.ReadAll(obj.Body)
	if err != nil {
		return "", fmt.Errorf("read snapshot: %w", err)
	}

	plaintext, err := Decrypt(sealed, m.cfg.Passphrase)
	if err != nil {
		return "", fmt.Errorf("decrypt snapshot: %w", err)
	}

	restored := filepath.Join(filepath.Dir(m.cfg.DBPath), "restored-"+filepath.Base(key)+".db")
	if err := os.WriteFile(restored, plaintext, 0o600); err != nil {
		return "", fmt.Errorf("write restored database: %w", err)
	}
	return restored, nil
}
