package backup

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/sethvargo/go-retry"
)

// s3Client is an interface for testability.
type s3Client interface {
	PutObject(ctx context.Context, input *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Config holds the S3 target and encryption settings for backups.
type Config struct {
	Bucket     string
	Region     string
	Endpoint   string
	AccessKey  string
	SecretKey  string
	Passphrase string
	Interval   time.Duration
}

// Manager takes periodic snapshots of the SQLite database, encrypts them,
// and uploads them to S3-compatible storage.
type Manager struct {
	mu     sync.RWMutex
	cfg    Config
	db     *sql.DB
	client s3Client
	logger *slog.Logger
	now    func() time.Time

	lastBackup time.Time
	lastError  error

	cancel context.CancelFunc
	done   chan struct{}
}

// NewManager creates a backup manager. It is disabled (Start is a no-op)
// when the bucket or passphrase is missing.
func NewManager(cfg Config, db *sql.DB, logger *slog.Logger) *Manager {
	m := &Manager{
		cfg:    cfg,
		db:     db,
		logger: logger.With("component", "backup"),
		now:    time.Now,
	}
	if m.Enabled() {
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

// Enabled reports whether the manager has a target to upload to.
func (m *Manager) Enabled() bool {
	return m.cfg.Bucket != "" && m.cfg.Passphrase != ""
}

// Start begins the scheduled backup loop.
func (m *Manager) Start(ctx context.Context) {
	if !m.Enabled() {
		return
	}

	m.mu.Lock()
	ctx, m.cancel = context.WithCancel(ctx)
	m.done = make(chan struct{})
	m.mu.Unlock()

	go func() {
		defer close(m.done)
		ticker := time.NewTicker(m.cfg.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := m.Run(ctx); err != nil {
					m.logger.Error("backup failed", "error", err)
				}
			}
		}
	}()
}

// Stop gracefully stops the backup loop.
func (m *Manager) Stop() {
	m.mu.RLock()
	cancel := m.cancel
	done := m.done
	m.mu.RUnlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

// LastBackup returns when the last successful backup finished and the
// error from the most recent attempt, if any.
func (m *Manager) LastBackup() (time.Time, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastBackup, m.lastError
}

// Run performs one snapshot-encrypt-upload cycle.
func (m *Manager) Run(ctx context.Context) error {
	err := m.run(ctx)

	m.mu.Lock()
	m.lastError = err
	if err == nil {
		m.lastBackup = m.now()
	}
	m.mu.Unlock()

	return err
}

func (m *Manager) run(ctx context.Context) error {
	snapshot, err := m.snapshot()
	if err != nil {
		return err
	}
	defer os.Remove(snapshot)

	plaintext, err := os.ReadFile(snapshot)
	if err != nil {
		return fmt.Errorf("read snapshot: %w", err)
	}

	sealed, err := Encrypt(plaintext, m.cfg.Passphrase)
	if err != nil {
		return err
	}

	key := fmt.Sprintf("choreme-%s.db.enc", m.now().UTC().Format("20060102T150405Z"))
	if err := m.upload(ctx, key, sealed); err != nil {
		return err
	}

	m.logger.Info("backup uploaded", "key", key, "bytes", len(sealed))
	return nil
}

// snapshot writes a consistent copy of the live database to a temp file
// using VACUUM INTO and returns its path.
func (m *Manager) snapshot() (string, error) {
	path := filepath.Join(os.TempDir(), fmt.Sprintf("choreme-snapshot-%d.db", m.now().UnixNano()))
	if _, err := m.db.Exec(`VACUUM INTO ?`, path); err != nil {
		return "", fmt.Errorf("snapshot db: %w", err)
	}
	return path, nil
}

// upload puts the object with fibonacci backoff; transient S3 failures are
// retried a few times before giving up.
func (m *Manager) upload(ctx context.Context, key string, data []byte) error {
	backoff := retry.WithMaxRetries(3, retry.NewFibonacci(time.Second))

	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		_, err := m.client.PutObject(ctx, &s3.PutObjectInput{
			Bucket: aws.String(m.cfg.Bucket),
			Key:    aws.String(key),
			Body:   bytes.NewReader(data),
		})
		if err != nil {
			return retry.RetryableError(fmt.Errorf("put object: %w", err))
		}
		return nil
	})
}
