package backup

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"homeboard/internal/database"
)

type fakeS3 struct {
	objects map[string][]byte
	mtimes  map[string]time.Time
	deleted []string
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: map[string][]byte{}, mtimes: map[string]time.Time{}}
}

func (f *fakeS3) PutObject(ctx context.Context, input *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(input.Body)
	if err != nil {
		return nil, err
	}
	f.objects[aws.ToString(input.Key)] = data
	f.mtimes[aws.ToString(input.Key)] = time.Now().UTC()
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObject(ctx context.Context, input *s3.GetObjectInput, opts ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	data, ok := f.objects[aws.ToString(input.Key)]
	if !ok {
		return nil, &s3types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (f *fakeS3) ListObjectsV2(ctx context.Context, input *s3.ListObjectsV2Input, opts ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	var out s3.ListObjectsV2Output
	for key := range f.objects {
		mtime := f.mtimes[key]
		out.Contents = append(out.Contents, s3types.Object{
			Key:          aws.String(key),
			LastModified: aws.Time(mtime),
		})
	}
	return &out, nil
}

func (f *fakeS3) DeleteObject(ctx context.Context, input *s3.DeleteObjectInput, opts ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	key := aws.ToString(input.Key)
	delete(f.objects, key)
	delete(f.mtimes, key)
	f.deleted = append(f.deleted, key)
	return &s3.DeleteObjectOutput{}, nil
}

func testManager(t *testing.T) (*Manager, *fakeS3) {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := database.Open(dbPath)
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	fake := newFakeS3()
	m := NewManager(Config{
		Bucket:        "backups",
		AccessKey:     "test",
		SecretKey:     "test",
		Passphrase:    "family secret",
		DBPath:        dbPath,
		RetentionDays: 7,
	}, db, slog.New(slog.NewTextHandler(io.Discard, nil)))
	m.client = fake
	return m, fake
}

func TestSnapshotUploadsEncrypted(t *testing.T) {
	m, fake := testManager(t)

	if err := m.Snapshot(context.Background()); err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if len(fake.objects) != 1 {
		t.Fatalf("expected 1 object, got %d", len(fake.objects))
	}

	raw, err := os.ReadFile(m.cfg.DBPath)
	if err != nil {
		t.Fatalf("read db: %v", err)
	}
	for key, sealed := range fake.objects {
		if bytes.Equal(sealed, raw) {
			t.Errorf("object %s uploaded unencrypted", key)
		}
		plain, err := Decrypt(sealed, "family secret")
		if err != nil {
			t.Fatalf("decrypt uploaded snapshot: %v", err)
		}
		if !bytes.Equal(plain, raw) {
			t.Error("decrypted snapshot differs from database file")
		}
	}

	lastRun, size, lastErr := m.Status()
	if lastRun.IsZero() || size == 0 || lastErr != nil {
		t.Errorf("Status() = %v, %d, %v", lastRun, size, lastErr)
	}
}

func TestPruneRemovesOnlyExpired(t *testing.T) {
	m, fake := testManager(t)

	now := time.Now().UTC()
	fake.objects[keyPrefix+"old.db.enc"] = []byte("x")
	fake.mtimes[keyPrefix+"old.db.enc"] = now.AddDate(0, 0, -10)
	fake.objects[keyPrefix+"fresh.db.enc"] = []byte("y")
	fake.mtimes[keyPrefix+"fresh.db.enc"] = now.AddDate(0, 0, -1)

	if err := m.prune(context.Background(), now); err != nil {
		t.Fatalf("prune: %v", err)
	}
	if _, ok := fake.objects[keyPrefix+"old.db.enc"]; ok {
		t.Error("expired snapshot survived prune")
	}
	if _, ok := fake.objects[keyPrefix+"fresh.db.enc"]; !ok {
		t.Error("fresh snapshot was pruned")
	}
}

func TestRestoreRoundTrip(t *testing.T) {
	m, fake := testManager(t)

	if err := m.Snapshot(context.Background()); err != nil {
		t.Fatalf("Snapshot: %v", err)
	}

	var key string
	for k := range fake.objects {
		key = k
	}

	restored, err := m.Restore(context.Background(), key)
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}
	defer os.Remove(restored)

	raw, _ := os.ReadFile(m.cfg.DBPath)
	got, err := os.ReadFile(restored)
	if err != nil {
		t.Fatalf("read restored file: %v", err)
	}
	if !bytes.Equal(got, raw) {
		t.Error("restored database differs from original")
	}
}
