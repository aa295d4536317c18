package imagegen

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"deckgen/internal/domain"
	"deckgen/internal/storage"
)

// fakeImageRepo mirrors the replace contract: one record per
// (presentation, slide index), last write wins.
type fakeImageRepo struct {
	records map[string]domain.ImageRecord
	deleted []string
}

func newFakeImageRepo() *fakeImageRepo {
	return &fakeImageRepo{records: map[string]domain.ImageRecord{}}
}

func recordKey(presentationID string, slideIndex int) string {
	return fmt.Sprintf("%s/%d", presentationID, slideIndex)
}

func (f *fakeImageRepo) Replace(_ context.Context, rec domain.ImageRecord) (domain.ImageRecord, error) {
	f.records[recordKey(rec.PresentationID, rec.SlideIndex)] = rec
	return rec, nil
}

func (f *fakeImageRepo) DeleteForPresentation(_ context.Context, presentationID string) error {
	f.deleted = append(f.deleted, presentationID)
	for key, rec := range f.records {
		if rec.PresentationID == presentationID {
			delete(f.records, key)
		}
	}
	return nil
}

func (f *fakeImageRepo) ListForPresentation(_ context.Context, presentationID string) ([]domain.ImageRecord, error) {
	var out []domain.ImageRecord
	for _, rec := range f.records {
		if rec.PresentationID == presentationID {
			out = append(out, rec)
		}
	}
	return out, nil
}

func TestStoreForSlideReplacesPriorImage(t *testing.T) {
	files, err := storage.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	repo := newFakeImageRepo()
	store := NewStore(files, repo, "http://cdn.test/")

	first := domain.GeneratedImage{SlideIndex: 1, Data: []byte("first"), MIMEType: "image/jpeg"}
	if _, err := store.StoreForSlide(context.Background(), "pres-1", first); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second := domain.GeneratedImage{SlideIndex: 1, Data: []byte("second"), MIMEType: "image/jpeg"}
	rec, err := store.StoreForSlide(context.Background(), "pres-1", second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Exactly one record survives for the slide, pointing at the second write.
	if len(repo.records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(repo.records))
	}
	stored := repo.records[recordKey("pres-1", 1)]
	if stored.ID != rec.ID {
		t.Fatalf("surviving record %q is not the second write %q", stored.ID, rec.ID)
	}
	if want := "http://cdn.test/presentations/pres-1/slide-01.jpg"; stored.URL != want {
		t.Fatalf("record url = %q, want %q", stored.URL, want)
	}

	// The deterministic key means one file on disk, holding the second bytes.
	dir := filepath.Join(files.BasePath(), "presentations", "pres-1")
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 file, got %d", len(entries))
	}
	data, err := os.ReadFile(filepath.Join(dir, entries[0].Name()))
	if err != nil {
		t.Fatalf("read file: %v", err)
	}
	if string(data) != "second" {
		t.Fatalf("file holds %q, want the second payload", data)
	}
}

func TestStoreDeleteForPresentationRemovesBytes(t *testing.T) {
	files, err := storage.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	repo := newFakeImageRepo()
	store := NewStore(files, repo, "http://cdn.test")

	img := domain.GeneratedImage{SlideIndex: 2, Data: []byte("img"), MIMEType: "image/png"}
	if _, err := store.StoreForSlide(context.Background(), "pres-1", img); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := store.DeleteForPresentation(context.Background(), "pres-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(repo.records) != 0 {
		t.Fatalf("records not deleted: %#v", repo.records)
	}
	if _, err := os.Stat(filepath.Join(files.BasePath(), "presentations", "pres-1")); !os.IsNotExist(err) {
		t.Fatalf("presentation files not removed, stat err = %v", err)
	}
}
