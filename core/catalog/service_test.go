package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"tunemart/apperr"
	"tunemart/logger"
	"tunemart/model"
)

// fakeMusicRepo is an in-memory MusicRepository.
type fakeMusicRepo struct {
	records []*model.Music
	nextID  int64
	failOp  string
}

func (r *fakeMusicRepo) fail(op string) error {
	if r.failOp == op {
		return errors.New(op + " failed")
	}
	return nil
}

func (r *fakeMusicRepo) find(id int64) *model.Music {
	for _, m := range r.records {
		if m.ID == id {
			return m
		}
	}
	return nil
}

func (r *fakeMusicRepo) Create(ctx context.Context, m *model.Music) (int64, error) {
	if err := r.fail("create"); err != nil {
		return 0, err
	}
	r.nextID++
	stored := *m
	stored.ID = r.nextID
	r.records = append(r.records, &stored)
	return r.nextID, nil
}

func (r *fakeMusicRepo) FindByID(ctx context.Context, id int64) (*model.Music, error) {
	if err := r.fail("find"); err != nil {
		return nil, err
	}
	m := r.find(id)
	if m == nil {
		return nil, nil
	}
	cp := *m
	return &cp, nil
}

func (r *fakeMusicRepo) page(filtered []*model.Music, offset, limit int) ([]*model.Music, int64, error) {
	total := int64(len(filtered))
	if offset >= len(filtered) {
		return []*model.Music{}, total, nil
	}
	end := offset + limit
	if end > len(filtered) {
		end = len(filtered)
	}
	return filtered[offset:end], total, nil
}

func (r *fakeMusicRepo) FindAll(ctx context.Context, offset, limit int) ([]*model.Music, int64, error) {
	return r.page(r.records, offset, limit)
}

func (r *fakeMusicRepo) FindByGenre(ctx context.Context, genre string, offset, limit int) ([]*model.Music, int64, error) {
	var filtered []*model.Music
	for _, m := range r.records {
		if m.Genre == genre {
			filtered = append(filtered, m)
		}
	}
	return r.page(filtered, offset, limit)
}

func (r *fakeMusicRepo) FindByArtist(ctx context.Context, artist string, offset, limit int) ([]*model.Music, int64, error) {
	var filtered []*model.Music
	for _, m := range r.records {
		if m.ArtistUsername == artist {
			filtered = append(filtered, m)
		}
	}
	return r.page(filtered, offset, limit)
}

func (r *fakeMusicRepo) SearchByNameOrArtist(ctx context.Context, query string, offset, limit int) ([]*model.Music, int64, error) {
	q := strings.ToLower(query)
	var filtered []*model.Music
	for _, m := range r.records {
		if strings.Contains(strings.ToLower(m.Name), q) || strings.Contains(strings.ToLower(m.ArtistUsername), q) {
			filtered = append(filtered, m)
		}
	}
	return r.page(filtered, offset, limit)
}

func (r *fakeMusicRepo) Update(ctx context.Context, m *model.Music) error {
	if err := r.fail("update"); err != nil {
		return err
	}
	if stored := r.find(m.ID); stored != nil {
		*stored = *m
	}
	return nil
}

func (r *fakeMusicRepo) UpdateRating(ctx context.Context, id int64, average float64, total int) error {
	if stored := r.find(id); stored != nil {
		stored.AverageRating = average
		stored.TotalReviews = total
	}
	return nil
}

func (r *fakeMusicRepo) SetFlag(ctx context.Context, id int64, customerID int64, at time.Time) error {
	if stored := r.find(id); stored != nil {
		stored.IsFlagged = true
		stored.FlaggedAt = &at
		stored.FlaggedByCustomerID = &customerID
	}
	return nil
}

func (r *fakeMusicRepo) ClearFlag(ctx context.Context, id int64) error {
	if stored := r.find(id); stored != nil {
		stored.IsFlagged = false
		stored.FlaggedAt = nil
		stored.FlaggedByCustomerID = nil
	}
	return nil
}

func (r *fakeMusicRepo) DeleteWithReviews(ctx context.Context, id int64) error {
	if err := r.fail("delete"); err != nil {
		return err
	}
	for i, m := range r.records {
		if m.ID == id {
			r.records = append(r.records[:i], r.records[i+1:]...)
			return nil
		}
	}
	return nil
}

// fakeReviewAgg only serves AggregateForMusic; the rest is unused here.
type fakeReviewAgg struct {
	ratings map[int64][]int
}

func (f *fakeReviewAgg) Create(ctx context.Context, rev *model.Review) (int64, error) { return 0, nil }
func (f *fakeReviewAgg) FindByID(ctx context.Context, id int64) (*model.Review, error) {
	return nil, nil
}
func (f *fakeReviewAgg) FindByMusicID(ctx context.Context, musicID int64, offset, limit int) ([]*model.Review, int64, error) {
	return nil, 0, nil
}
func (f *fakeReviewAgg) FindByMusicAndCustomer(ctx context.Context, musicID int64, customer string) (*model.Review, error) {
	return nil, nil
}
func (f *fakeReviewAgg) Update(ctx context.Context, rev *model.Review) error { return nil }
func (f *fakeReviewAgg) Delete(ctx context.Context, id int64) error          { return nil }
func (f *fakeReviewAgg) AggregateForMusic(ctx context.Context, musicID int64) (float64, int, error) {
	ratings := f.ratings[musicID]
	if len(ratings) == 0 {
		return 0, 0, nil
	}
	sum := 0
	for _, r := range ratings {
		sum += r
	}
	return float64(sum) / float64(len(ratings)), len(ratings), nil
}

// fakeUploader records stored objects in memory.
type fakeUploader struct {
	stored     map[string]string // object key -> content type
	failPrefix string
}

func newFakeUploader() *fakeUploader {
	return &fakeUploader{stored: make(map[string]string)}
}

func (u *fakeUploader) Upload(ctx context.Context, r io.Reader, size int64, contentType, objectKey string) (string, error) {
	if u.failPrefix != "" && strings.HasPrefix(objectKey, u.failPrefix) {
		return "", fmt.Errorf("upload of %s failed", objectKey)
	}
	u.stored[objectKey] = contentType
	return objectKey, nil
}

func (u *fakeUploader) Remove(ctx context.Context, objectKey string) error {
	delete(u.stored, objectKey)
	return nil
}

func (u *fakeUploader) Fetch(ctx context.Context, objectKey string) (io.ReadCloser, error) {
	return io.NopCloser(strings.NewReader("")), nil
}

func newTestService(repo *fakeMusicRepo, agg *fakeReviewAgg, up *fakeUploader) *Service {
	if agg == nil {
		agg = &fakeReviewAgg{ratings: map[int64][]int{}}
	}
	if up == nil {
		up = newFakeUploader()
	}
	return NewService(repo, agg, up, nil, logger.NewNop())
}

func audioAsset() Asset {
	return Asset{Reader: strings.NewReader("audio-bytes"), Size: 11, ContentType: "audio/mpeg", Filename: "track.mp3"}
}

func coverAsset() Asset {
	return Asset{Reader: strings.NewReader("image-bytes"), Size: 11, ContentType: "image/jpeg", Filename: "cover.jpg"}
}

func validInput() UploadInput {
	return UploadInput{Name: "Blue Horizon", Category: "Single", Price: 9.99, Genre: "Ambient"}
}

func TestUploadSetsOwnerFromIdentity(t *testing.T) {
	repo := &fakeMusicRepo{}
	up := newFakeUploader()
	svc := newTestService(repo, nil, up)

	record, err := svc.Upload(context.Background(), validInput(), audioAsset(), coverAsset(), "maya99")
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if record.ArtistUsername != "maya99" {
		t.Fatalf("owner = %q, want maya99", record.ArtistUsername)
	}
	if record.ID == 0 {
		t.Fatal("record was not assigned an id")
	}
	if len(up.stored) != 2 {
		t.Fatalf("stored %d assets, want 2", len(up.stored))
	}
	if record.CreatedAt.IsZero() || record.UpdatedAt.IsZero() {
		t.Fatal("timestamps not set")
	}
}

func TestUploadAcceptsMultibyteName(t *testing.T) {
	repo := &fakeMusicRepo{}
	svc := newTestService(repo, nil, nil)

	in := validInput()
	in.Name = strings.Repeat("音", 60) // 60 characters, 180 bytes
	record, err := svc.Upload(context.Background(), in, audioAsset(), coverAsset(), "maya99")
	if err != nil {
		t.Fatalf("valid 60-character name rejected: %v", err)
	}
	if record.Name != in.Name {
		t.Fatalf("name = %q", record.Name)
	}
}

func TestUploadRejectsWrongAudioType(t *testing.T) {
	repo := &fakeMusicRepo{}
	up := newFakeUploader()
	svc := newTestService(repo, nil, up)

	badAudio := Asset{Reader: strings.NewReader("png"), Size: 3, ContentType: "image/png", Filename: "a.png"}
	_, err := svc.Upload(context.Background(), validInput(), badAudio, coverAsset(), "maya99")
	if !apperr.IsValidation(err) {
		t.Fatalf("want ValidationError, got %v", err)
	}
	if len(up.stored) != 0 {
		t.Fatal("no asset should be stored when validation fails")
	}
	if len(repo.records) != 0 {
		t.Fatal("no record should be persisted when validation fails")
	}
}

func TestUploadRejectsMissingFields(t *testing.T) {
	svc := newTestService(&fakeMusicRepo{}, nil, nil)
	_, err := svc.Upload(context.Background(), UploadInput{Name: " ", Category: "", Price: -1}, audioAsset(), coverAsset(), "maya99")
	if !apperr.IsValidation(err) {
		t.Fatalf("want ValidationError, got %v", err)
	}
	var verr *apperr.ValidationError
	if !errors.As(err, &verr) || len(verr.Violations) != 3 {
		t.Fatalf("want 3 violations, got %v", err)
	}
}

func TestUploadStorageFailure(t *testing.T) {
	up := newFakeUploader()
	up.failPrefix = "audio/"
	svc := newTestService(&fakeMusicRepo{}, nil, up)
	_, err := svc.Upload(context.Background(), validInput(), audioAsset(), coverAsset(), "maya99")
	if !apperr.IsStorage(err) {
		t.Fatalf("want StorageError, got %v", err)
	}
}

func TestGetNotFound(t *testing.T) {
	svc := newTestService(&fakeMusicRepo{}, nil, nil)
	_, err := svc.Get(context.Background(), 42)
	if !apperr.IsNotFound(err) {
		t.Fatalf("want NotFoundError, got %v", err)
	}
}

func seedRecord(repo *fakeMusicRepo, name, artist string) *model.Music {
	repo.nextID++
	m := &model.Music{
		ID:             repo.nextID,
		Name:           name,
		Category:       "Single",
		Price:          9.99,
		ArtistUsername: artist,
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
	}
	repo.records = append(repo.records, m)
	return m
}

func TestUpdateRejectsNonOwner(t *testing.T) {
	repo := &fakeMusicRepo{}
	seedRecord(repo, "Blue Horizon", "maya99")
	svc := newTestService(repo, nil, nil)

	_, err := svc.Update(context.Background(), 1, UpdateInput{Name: "Hacked", Category: "Single", Price: 1}, "intruder")
	if !apperr.IsUnauthorized(err) {
		t.Fatalf("want UnauthorizedError, got %v", err)
	}
	if repo.records[0].Name != "Blue Horizon" {
		t.Fatal("record must be unchanged after a rejected update")
	}
}

func TestUpdateKeepsOwnerImmutable(t *testing.T) {
	repo := &fakeMusicRepo{}
	seedRecord(repo, "Blue Horizon", "maya99")
	svc := newTestService(repo, nil, nil)

	updated, err := svc.Update(context.Background(), 1, UpdateInput{Name: "Blue Horizon II", Category: "Single", Price: 12.50}, "maya99")
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.ArtistUsername != "maya99" {
		t.Fatalf("owner changed to %q", updated.ArtistUsername)
	}
	if updated.Name != "Blue Horizon II" || updated.Price != 12.50 {
		t.Fatalf("update not applied: %+v", updated)
	}
}

func TestUpdateNotFound(t *testing.T) {
	svc := newTestService(&fakeMusicRepo{}, nil, nil)
	_, err := svc.Update(context.Background(), 404, UpdateInput{Name: "x", Category: "y", Price: 1}, "maya99")
	if !apperr.IsNotFound(err) {
		t.Fatalf("want NotFoundError, got %v", err)
	}
}

func TestDeleteRemovesRecordAndAssets(t *testing.T) {
	repo := &fakeMusicRepo{}
	up := newFakeUploader()
	svc := newTestService(repo, nil, up)

	record, err := svc.Upload(context.Background(), validInput(), audioAsset(), coverAsset(), "maya99")
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if err := svc.Delete(context.Background(), record.ID, "maya99"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if len(repo.records) != 0 {
		t.Fatal("record not deleted")
	}
	if len(up.stored) != 0 {
		t.Fatalf("assets left behind: %v", up.stored)
	}
}

func TestDeleteRejectsNonOwner(t *testing.T) {
	repo := &fakeMusicRepo{}
	seedRecord(repo, "Blue Horizon", "maya99")
	svc := newTestService(repo, nil, nil)

	if err := svc.Delete(context.Background(), 1, "intruder"); !apperr.IsUnauthorized(err) {
		t.Fatalf("want UnauthorizedError, got %v", err)
	}
	if len(repo.records) != 1 {
		t.Fatal("record must survive a rejected delete")
	}
}

func TestSearchIsCaseInsensitiveSubstring(t *testing.T) {
	repo := &fakeMusicRepo{}
	seedRecord(repo, "Blue Horizon", "maya99")
	seedRecord(repo, "Red Dawn", "otherartist")
	svc := newTestService(repo, nil, nil)

	for _, query := range []string{"blue", "MAYA"} {
		page, err := svc.Search(context.Background(), query, 0, 10)
		if err != nil {
			t.Fatalf("Search(%q): %v", query, err)
		}
		if page.TotalElements != 1 || len(page.Items) != 1 {
			t.Fatalf("Search(%q) = %d results, want 1", query, page.TotalElements)
		}
		if page.Items[0].Name != "Blue Horizon" {
			t.Fatalf("Search(%q) returned %q", query, page.Items[0].Name)
		}
	}
}

func TestPagingValidation(t *testing.T) {
	svc := newTestService(&fakeMusicRepo{}, nil, nil)
	ctx := context.Background()

	if _, err := svc.ListAll(ctx, -1, 10); !apperr.IsValidation(err) {
		t.Fatalf("negative page: want ValidationError, got %v", err)
	}
	if _, err := svc.ListAll(ctx, 0, 0); !apperr.IsValidation(err) {
		t.Fatalf("zero size: want ValidationError, got %v", err)
	}
	if _, err := svc.Search(ctx, "  ", 0, 10); !apperr.IsValidation(err) {
		t.Fatalf("blank query: want ValidationError, got %v", err)
	}
	if _, err := svc.ListByGenre(ctx, "", 0, 10); !apperr.IsValidation(err) {
		t.Fatalf("blank genre: want ValidationError, got %v", err)
	}
}

func TestListAllEmptyCatalog(t *testing.T) {
	svc := newTestService(&fakeMusicRepo{}, nil, nil)
	page, err := svc.ListAll(context.Background(), 0, 10)
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	if page.TotalElements != 0 || len(page.Items) != 0 || page.TotalPages != 0 {
		t.Fatalf("empty catalog page = %+v", page)
	}
}

func TestFlagUnflagAtomicity(t *testing.T) {
	repo := &fakeMusicRepo{}
	seedRecord(repo, "Blue Horizon", "maya99")
	svc := newTestService(repo, nil, nil)
	ctx := context.Background()

	if err := svc.Flag(ctx, 1, 7); err != nil {
		t.Fatalf("Flag: %v", err)
	}
	m := repo.records[0]
	if !m.IsFlagged || m.FlaggedAt == nil || m.FlaggedByCustomerID == nil || *m.FlaggedByCustomerID != 7 {
		t.Fatalf("flag group not fully set: %+v", m)
	}

	// Only the reporter may retract.
	if err := svc.Unflag(ctx, 1, 8); !apperr.IsUnauthorized(err) {
		t.Fatalf("want UnauthorizedError for wrong customer, got %v", err)
	}

	if err := svc.Unflag(ctx, 1, 7); err != nil {
		t.Fatalf("Unflag: %v", err)
	}
	m = repo.records[0]
	if m.IsFlagged || m.FlaggedAt != nil || m.FlaggedByCustomerID != nil {
		t.Fatalf("flag group not fully cleared: %+v", m)
	}

	// Unflagging an unflagged record is a no-op.
	if err := svc.Unflag(ctx, 1, 7); err != nil {
		t.Fatalf("Unflag on clean record: %v", err)
	}
}

func TestRecomputeRating(t *testing.T) {
	repo := &fakeMusicRepo{}
	seedRecord(repo, "Blue Horizon", "maya99")
	agg := &fakeReviewAgg{ratings: map[int64][]int{1: {3, 5}}}
	svc := newTestService(repo, agg, nil)

	if err := svc.RecomputeRating(context.Background(), 1); err != nil {
		t.Fatalf("RecomputeRating: %v", err)
	}
	m := repo.records[0]
	if m.AverageRating != 4.00 || m.TotalReviews != 2 {
		t.Fatalf("rating = %.2f/%d, want 4.00/2", m.AverageRating, m.TotalReviews)
	}

	agg.ratings[1] = []int{4, 4, 5}
	if err := svc.RecomputeRating(context.Background(), 1); err != nil {
		t.Fatalf("RecomputeRating: %v", err)
	}
	m = repo.records[0]
	if m.AverageRating != 4.33 || m.TotalReviews != 3 {
		t.Fatalf("rating = %.2f/%d, want 4.33/3", m.AverageRating, m.TotalReviews)
	}

	agg.ratings[1] = nil
	if err := svc.RecomputeRating(context.Background(), 1); err != nil {
		t.Fatalf("RecomputeRating: %v", err)
	}
	m = repo.records[0]
	if m.AverageRating != 0 || m.TotalReviews != 0 {
		t.Fatalf("rating after removing reviews = %.2f/%d, want 0/0", m.AverageRating, m.TotalReviews)
	}
}
