package imagegen

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"deckgen/internal/domain"
	"deckgen/internal/storage"
)

// Store persists accepted images: bytes to the file store, the record to the
// repository. Writing a slide replaces whatever that slide held before, both
// on disk (deterministic key) and in the record store (delete-before-insert).
type Store struct {
	files   *storage.FileStore
	records domain.ImageRepository
	baseURL string
}

func NewStore(files *storage.FileStore, records domain.ImageRepository, baseURL string) *Store {
	return &Store{
		files:   files,
		records: records,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// StoreForSlide persists one accepted image and returns its record.
func (s *Store) StoreForSlide(ctx context.Context, presentationID string, img domain.GeneratedImage) (domain.ImageRecord, error) {
	key := slideKey(presentationID, img.SlideIndex, img.MIMEType)
	savedKey, err := s.files.Write(ctx, key, img.Data)
	if err != nil {
		return domain.ImageRecord{}, fmt.Errorf("write image bytes: %w", err)
	}

	rec := domain.ImageRecord{
		ID:             uuid.NewString(),
		PresentationID: presentationID,
		SlideIndex:     img.SlideIndex,
		URL:            s.baseURL + "/" + savedKey,
		CreatedAt:      time.Now().UTC(),
	}
	stored, err := s.records.Replace(ctx, rec)
	if err != nil {
		return domain.ImageRecord{}, fmt.Errorf("store image record: %w", err)
	}
	return stored, nil
}

// DeleteForPresentation removes all image records for a presentation along
// with their bytes on disk.
func (s *Store) DeleteForPresentation(ctx context.Context, presentationID string) error {
	if err := s.records.DeleteForPresentation(ctx, presentationID); err != nil {
		return err
	}
	return s.files.RemovePrefix(ctx, "presentations/"+presentationID)
}

// ListForPresentation returns the stored records ordered by slide index.
func (s *Store) ListForPresentation(ctx context.Context, presentationID string) ([]domain.ImageRecord, error) {
	return s.records.ListForPresentation(ctx, presentationID)
}

var _ Sink = (*Store)(nil)

func slideKey(presentationID string, slideIndex int, mimeType string) string {
	return fmt.Sprintf("presentations/%s/slide-%02d%s", presentationID, slideIndex, extensionForMIME(mimeType))
}

func extensionForMIME(mime string) string {
	switch strings.ToLower(strings.TrimSpace(mime)) {
	case "image/png":
		return ".png"
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	default:
		return ".bin"
	}
}
