package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"smartaitools/internal/models"
)

// fakePromptRepo keeps prompts in memory and mirrors the repository's
// atomic rating semantics with the pure ApplyRating helper.
type fakePromptRepo struct {
	prompts map[primitive.ObjectID]*models.Prompt
	total   int64
	findErr error
}

func newFakePromptRepo() *fakePromptRepo {
	return &fakePromptRepo{prompts: make(map[primitive.ObjectID]*models.Prompt)}
}

func (r *fakePromptRepo) put(p models.Prompt) primitive.ObjectID {
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	r.prompts[p.ID] = &p
	return p.ID
}

func (r *fakePromptRepo) Create(ctx context.Context, p *models.Prompt) (*models.Prompt, error) {
	p.ID = primitive.NewObjectID()
	r.prompts[p.ID] = p
	return p, nil
}

func (r *fakePromptRepo) Find(ctx context.Context, filter bson.M, sort bson.D, limit, page int64) ([]models.Prompt, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	var out []models.Prompt
	for _, p := range r.prompts {
		out = append(out, *p)
	}
	return out, nil
}

func (r *fakePromptRepo) Count(ctx context.Context, filter bson.M) (int64, error) {
	if r.findErr != nil {
		return 0, r.findErr
	}
	if r.total > 0 {
		return r.total, nil
	}
	return int64(len(r.prompts)), nil
}

func (r *fakePromptRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Prompt, error) {
	p, ok := r.prompts[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	copied := *p
	return &copied, nil
}

func (r *fakePromptRepo) UpdateByID(ctx context.Context, id primitive.ObjectID, set bson.M) (*models.Prompt, error) {
	p, ok := r.prompts[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	if v, ok := set["title"].(string); ok {
		p.Title = v
	}
	if v, ok := set["description"].(string); ok {
		p.Description = v
	}
	if v, ok := set["visibility"].(models.Visibility); ok {
		p.Visibility = v
	}
	copied := *p
	return &copied, nil
}

func (r *fakePromptRepo) Rate(ctx context.Context, id, rater primitive.ObjectID, value int, at time.Time) (*models.Prompt, error) {
	p, ok := r.prompts[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	p.Ratings = models.ApplyRating(p.Ratings, rater, value, at)
	p.AverageRating = models.AverageRating(p.Ratings)
	p.RatingCount = int64(len(p.Ratings))
	copied := *p
	return &copied, nil
}

func (r *fakePromptRepo) DeleteByID(ctx context.Context, id primitive.ObjectID) (*mongo.DeleteResult, error) {
	if _, ok := r.prompts[id]; !ok {
		return &mongo.DeleteResult{DeletedCount: 0}, nil
	}
	delete(r.prompts, id)
	return &mongo.DeleteResult{DeletedCount: 1}, nil
}

type fakeUserRepo struct {
	users map[primitive.ObjectID]models.PublicUser
}

func (r *fakeUserRepo) Create(ctx context.Context, user *models.User) (*models.User, error) {
	return user, nil
}

func (r *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return nil, mongo.ErrNoDocuments
}

func (r *fakeUserRepo) FindByID(ctx context.Context, userID primitive.ObjectID) (*models.User, error) {
	return nil, mongo.ErrNoDocuments
}

func (r *fakeUserRepo) FindPublicByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.PublicUser, error) {
	out := make(map[primitive.ObjectID]models.PublicUser)
	for _, id := range ids {
		if u, ok := r.users[id]; ok {
			out[id] = u
		}
	}
	return out, nil
}

func (r *fakeUserRepo) Update(ctx context.Context, userID primitive.ObjectID, updateFields bson.M) (*mongo.UpdateResult, error) {
	return &mongo.UpdateResult{MatchedCount: 1}, nil
}

func (r *fakeUserRepo) Delete(ctx context.Context, userID primitive.ObjectID) (*mongo.DeleteResult, error) {
	return &mongo.DeleteResult{DeletedCount: 1}, nil
}

func (r *fakeUserRepo) CountAll(ctx context.Context) (int64, error) {
	return int64(len(r.users)), nil
}

func newPromptFixture(owner primitive.ObjectID, visibility models.Visibility) models.Prompt {
	return models.Prompt{
		CreatedBy:  owner,
		Title:      "Code review checklist",
		Content:    "Review this diff for correctness and style.",
		Category:   "Code",
		Visibility: visibility,
		CreatedAt:  time.Now(),
	}
}

func newTestPromptService(repo *fakePromptRepo, users map[primitive.ObjectID]models.PublicUser) PromptService {
	return NewPromptService(repo, &fakeUserRepo{users: users})
}

func TestListPaginationMeta(t *testing.T) {
	owner := primitive.NewObjectID()
	repo := newFakePromptRepo()
	repo.put(newPromptFixture(owner, models.VisibilityPublic))
	repo.total = 25

	svc := newTestPromptService(repo, map[primitive.ObjectID]models.PublicUser{
		owner: {ID: owner, Username: "ada", Email: "ada@example.com"},
	})

	page, err := svc.List(context.Background(), models.RecordFilter{Page: 2, Limit: 10}, primitive.NilObjectID)
	assert.NoError(t, err)
	assert.Equal(t, int64(25), page.TotalCount)
	assert.Equal(t, int64(3), page.TotalPages)
	assert.Equal(t, int64(2), page.CurrentPage, "current page is echoed, not clamped")
}

func TestListEmptyResult(t *testing.T) {
	repo := newFakePromptRepo()
	svc := newTestPromptService(repo, nil)

	page, err := svc.List(context.Background(), models.RecordFilter{}, primitive.NilObjectID)
	assert.NoError(t, err)
	assert.NotNil(t, page.Records)
	assert.Empty(t, page.Records)
	assert.Equal(t, int64(1), page.TotalPages, "an empty result still has one page")
}

func TestListStoreFailure(t *testing.T) {
	repo := newFakePromptRepo()
	repo.findErr = assert.AnError
	svc := newTestPromptService(repo, nil)

	_, err := svc.List(context.Background(), models.RecordFilter{}, primitive.NilObjectID)
	assert.ErrorIs(t, err, ErrRetrieval)
}

func TestListExpandsOwners(t *testing.T) {
	owner := primitive.NewObjectID()
	repo := newFakePromptRepo()
	repo.put(newPromptFixture(owner, models.VisibilityPublic))

	svc := newTestPromptService(repo, map[primitive.ObjectID]models.PublicUser{
		owner: {ID: owner, Username: "ada", Email: "ada@example.com"},
	})

	page, err := svc.List(context.Background(), models.RecordFilter{}, primitive.NilObjectID)
	assert.NoError(t, err)
	assert.Len(t, page.Records, 1)
	assert.NotNil(t, page.Records[0].Owner)
	assert.Equal(t, "ada", page.Records[0].Owner.Username)
}

func TestGetByIDNotFoundBeforeForbidden(t *testing.T) {
	repo := newFakePromptRepo()
	svc := newTestPromptService(repo, nil)

	_, err := svc.GetByID(context.Background(), primitive.NewObjectID(), primitive.NilObjectID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetByIDForbiddenForStranger(t *testing.T) {
	owner := primitive.NewObjectID()
	stranger := primitive.NewObjectID()
	repo := newFakePromptRepo()
	id := repo.put(newPromptFixture(owner, models.VisibilityPrivate))

	svc := newTestPromptService(repo, map[primitive.ObjectID]models.PublicUser{owner: {ID: owner}})

	_, err := svc.GetByID(context.Background(), id, stranger)
	assert.ErrorIs(t, err, ErrForbidden)

	// The owner still reads it.
	p, err := svc.GetByID(context.Background(), id, owner)
	assert.NoError(t, err)
	assert.Equal(t, id, p.ID)
}

func TestGetByIDSharedWith(t *testing.T) {
	owner := primitive.NewObjectID()
	sharee := primitive.NewObjectID()
	repo := newFakePromptRepo()
	fixture := newPromptFixture(owner, models.VisibilityShared)
	fixture.SharedWith = []primitive.ObjectID{sharee}
	id := repo.put(fixture)

	svc := newTestPromptService(repo, map[primitive.ObjectID]models.PublicUser{owner: {ID: owner}})

	_, err := svc.GetByID(context.Background(), id, sharee)
	assert.NoError(t, err)
}

func TestCreateSetsOwnerAndDefaults(t *testing.T) {
	requester := primitive.NewObjectID()
	repo := newFakePromptRepo()
	svc := newTestPromptService(repo, nil)

	created, err := svc.Create(context.Background(), requester, models.CreatePromptRequest{
		Title:   "Summarizer",
		Content: "Summarize the following text.",
	})
	assert.NoError(t, err)
	assert.Equal(t, requester, created.CreatedBy)
	assert.Equal(t, models.VisibilityPublic, created.Visibility)
}

func TestCreateValidation(t *testing.T) {
	repo := newFakePromptRepo()
	svc := newTestPromptService(repo, nil)

	_, err := svc.Create(context.Background(), primitive.NewObjectID(), models.CreatePromptRequest{Title: "No content"})
	assert.ErrorIs(t, err, ErrValidation)
	assert.Empty(t, repo.prompts, "validation failures never write")
}

func TestUpdateByNonOwnerLeavesRecordUnchanged(t *testing.T) {
	owner := primitive.NewObjectID()
	stranger := primitive.NewObjectID()
	repo := newFakePromptRepo()
	id := repo.put(newPromptFixture(owner, models.VisibilityPublic))

	svc := newTestPromptService(repo, nil)

	title := "Hijacked"
	_, err := svc.Update(context.Background(), id, stranger, models.UpdatePromptRequest{Title: &title})
	assert.ErrorIs(t, err, ErrForbidden)
	assert.Equal(t, "Code review checklist", repo.prompts[id].Title)
}

func TestUpdateValidationNoPartialWrite(t *testing.T) {
	owner := primitive.NewObjectID()
	repo := newFakePromptRepo()
	id := repo.put(newPromptFixture(owner, models.VisibilityPublic))

	svc := newTestPromptService(repo, nil)

	bad := models.Visibility("internal")
	_, err := svc.Update(context.Background(), id, owner, models.UpdatePromptRequest{Visibility: &bad})
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, models.VisibilityPublic, repo.prompts[id].Visibility)
}

func TestUpdateByOwner(t *testing.T) {
	owner := primitive.NewObjectID()
	repo := newFakePromptRepo()
	id := repo.put(newPromptFixture(owner, models.VisibilityPublic))

	svc := newTestPromptService(repo, nil)

	title := "Refined checklist"
	updated, err := svc.Update(context.Background(), id, owner, models.UpdatePromptRequest{Title: &title})
	assert.NoError(t, err)
	assert.Equal(t, "Refined checklist", updated.Title)
}

func TestDeleteByNonOwner(t *testing.T) {
	owner := primitive.NewObjectID()
	stranger := primitive.NewObjectID()
	repo := newFakePromptRepo()
	id := repo.put(newPromptFixture(owner, models.VisibilityPublic))

	svc := newTestPromptService(repo, nil)

	err := svc.Delete(context.Background(), id, stranger)
	assert.ErrorIs(t, err, ErrForbidden)
	assert.Contains(t, repo.prompts, id)

	err = svc.Delete(context.Background(), id, owner)
	assert.NoError(t, err)
	assert.NotContains(t, repo.prompts, id)
}

func TestRateOutOfRangeLeavesRatingsUnchanged(t *testing.T) {
	owner := primitive.NewObjectID()
	rater := primitive.NewObjectID()
	repo := newFakePromptRepo()
	id := repo.put(newPromptFixture(owner, models.VisibilityPublic))

	svc := newTestPromptService(repo, nil)

	for _, bad := range []int{0, 6, -1} {
		_, err := svc.Rate(context.Background(), id, rater, bad)
		assert.ErrorIs(t, err, ErrValidation)
	}
	assert.Empty(t, repo.prompts[id].Ratings)
}

func TestRateOverwritesSameRater(t *testing.T) {
	owner := primitive.NewObjectID()
	rater := primitive.NewObjectID()
	repo := newFakePromptRepo()
	id := repo.put(newPromptFixture(owner, models.VisibilityPublic))

	svc := newTestPromptService(repo, nil)

	_, err := svc.Rate(context.Background(), id, rater, 5)
	assert.NoError(t, err)
	updated, err := svc.Rate(context.Background(), id, rater, 3)
	assert.NoError(t, err)

	assert.Len(t, updated.Ratings, 1)
	assert.Equal(t, 3, updated.Ratings[0].Rating)
	assert.Equal(t, 3.0, updated.AverageRating)
}

func TestRateUnreadableRecordForbidden(t *testing.T) {
	owner := primitive.NewObjectID()
	stranger := primitive.NewObjectID()
	repo := newFakePromptRepo()
	id := repo.put(newPromptFixture(owner, models.VisibilityPrivate))

	svc := newTestPromptService(repo, nil)

	_, err := svc.Rate(context.Background(), id, stranger, 4)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestRateMissingRecord(t *testing.T) {
	repo := newFakePromptRepo()
	svc := newTestPromptService(repo, nil)

	_, err := svc.Rate(context.Background(), primitive.NewObjectID(), primitive.NewObjectID(), 4)
	assert.ErrorIs(t, err, ErrNotFound)
}
