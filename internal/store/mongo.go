package store

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"dayflow/internal/models"
)

// Collection names.
const (
	collSchedule  = "schedule_items"
	collIdeas     = "ideas"
	collGoals     = "goals"
	collResources = "resources"
	collBios      = "user_bios"
)

// NewMongoStores builds the full store bundle over one database handle.
func NewMongoStores(db *mongo.Database) *Stores {
	return &Stores{
		Schedule:  &mongoScheduleStore{coll: db.Collection(collSchedule)},
		Ideas:     &mongoIdeaStore{coll: db.Collection(collIdeas)},
		Goals:     &mongoGoalStore{coll: db.Collection(collGoals)},
		Resources: &mongoResourceStore{coll: db.Collection(collResources)},
		Bio:       &mongoBioStore{coll: db.Collection(collBios)},
	}
}

// EnsureIndexes creates the owner-scoping indexes. Errors are returned, not
// fatal; callers log and continue since queries work without the indexes.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	for _, name := range []string{collSchedule, collIdeas, collGoals, collResources} {
		_, err := db.Collection(name).Indexes().CreateMany(ctx, []mongo.IndexModel{
			{Keys: bson.D{{Key: "userId", Value: 1}}},
			{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}}},
		})
		if err != nil {
			return wrapErr("index", name, err)
		}
	}
	return nil
}

func ownerFilter(id, ownerID string) bson.M {
	return bson.M{"_id": id, "userId": ownerID}
}

var afterUpdate = options.FindOneAndUpdate().SetReturnDocument(options.After)

// listSort maps the List order parameters onto a find option. An empty
// orderBy falls back to the caller-supplied default key and direction.
func listSort(orderBy string, ascending bool, defaultKey string, defaultAsc bool) *options.FindOptions {
	if orderBy == "" {
		orderBy, ascending = defaultKey, defaultAsc
	}
	dir := -1
	if ascending {
		dir = 1
	}
	return options.Find().SetSort(bson.D{{Key: orderBy, Value: dir}})
}

// --- schedule ---

type mongoScheduleStore struct {
	coll *mongo.Collection
}

func (s *mongoScheduleStore) List(ctx context.Context, ownerID, orderBy string, ascending bool) ([]models.ScheduleItem, error) {
	opts := listSort(orderBy, ascending, OrderByStartTime, true)
	cursor, err := s.coll.Find(ctx, bson.M{"userId": ownerID}, opts)
	if err != nil {
		return nil, wrapErr("list", collSchedule, err)
	}
	defer cursor.Close(ctx)

	items := []models.ScheduleItem{}
	if err := cursor.All(ctx, &items); err != nil {
		return nil, wrapErr("list", collSchedule, err)
	}
	return items, nil
}

func (s *mongoScheduleStore) Get(ctx context.Context, id, ownerID string) (*models.ScheduleItem, error) {
	var item models.ScheduleItem
	err := s.coll.FindOne(ctx, ownerFilter(id, ownerID)).Decode(&item)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, wrapErr("get", collSchedule, err)
	}
	return &item, nil
}

func (s *mongoScheduleStore) Create(ctx context.Context, item *models.ScheduleItem) error {
	_, err := s.coll.InsertOne(ctx, item)
	return wrapErr("create", collSchedule, err)
}

func (s *mongoScheduleStore) Update(ctx context.Context, id, ownerID string, patch *models.ScheduleItemPatch) (*models.ScheduleItem, error) {
	set := bson.M{"updatedAt": time.Now()}
	if patch.Title != nil {
		set["title"] = *patch.Title
	}
	if patch.Description != nil {
		set["description"] = *patch.Description
	}
	if patch.Priority != nil {
		set["priority"] = *patch.Priority
	}
	if patch.StartTime != nil {
		set["startTime"] = *patch.StartTime
	}
	if patch.EndTime != nil {
		set["endTime"] = *patch.EndTime
	}
	if patch.AllDay != nil {
		set["allDay"] = *patch.AllDay
	}
	if patch.RecurrenceRule != nil {
		set["recurrenceRule"] = *patch.RecurrenceRule
	}

	var item models.ScheduleItem
	err := s.coll.FindOneAndUpdate(ctx, ownerFilter(id, ownerID), bson.M{"$set": set}, afterUpdate).Decode(&item)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, wrapErr("update", collSchedule, err)
	}
	return &item, nil
}

func (s *mongoScheduleStore) Delete(ctx context.Context, id, ownerID string) (bool, error) {
	res, err := s.coll.DeleteOne(ctx, ownerFilter(id, ownerID))
	if err != nil {
		return false, wrapErr("delete", collSchedule, err)
	}
	return res.DeletedCount > 0, nil
}

// --- ideas ---

type mongoIdeaStore struct {
	coll *mongo.Collection
}

func (s *mongoIdeaStore) List(ctx context.Context, ownerID, orderBy string, ascending bool) ([]models.Idea, error) {
	opts := listSort(orderBy, ascending, OrderByCreatedAt, false)
	cursor, err := s.coll.Find(ctx, bson.M{"userId": ownerID}, opts)
	if err != nil {
		return nil, wrapErr("list", collIdeas, err)
	}
	defer cursor.Close(ctx)

	ideas := []models.Idea{}
	if err := cursor.All(ctx, &ideas); err != nil {
		return nil, wrapErr("list", collIdeas, err)
	}
	return ideas, nil
}

func (s *mongoIdeaStore) Create(ctx context.Context, idea *models.Idea) error {
	_, err := s.coll.InsertOne(ctx, idea)
	return wrapErr("create", collIdeas, err)
}

func (s *mongoIdeaStore) Update(ctx context.Context, id, ownerID string, patch *models.IdeaPatch) (*models.Idea, error) {
	set := bson.M{"updatedAt": time.Now()}
	if patch.Title != nil {
		set["title"] = *patch.Title
	}
	if patch.Content != nil {
		set["content"] = *patch.Content
	}

	var idea models.Idea
	err := s.coll.FindOneAndUpdate(ctx, ownerFilter(id, ownerID), bson.M{"$set": set}, afterUpdate).Decode(&idea)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, wrapErr("update", collIdeas, err)
	}
	return &idea, nil
}

func (s *mongoIdeaStore) Delete(ctx context.Context, id, ownerID string) (bool, error) {
	res, err := s.coll.DeleteOne(ctx, ownerFilter(id, ownerID))
	if err != nil {
		return false, wrapErr("delete", collIdeas, err)
	}
	return res.DeletedCount > 0, nil
}

// --- goals ---

type mongoGoalStore struct {
	coll *mongo.Collection
}

func (s *mongoGoalStore) List(ctx context.Context, ownerID, orderBy string, ascending bool) ([]models.Goal, error) {
	opts := listSort(orderBy, ascending, OrderByCreatedAt, false)
	cursor, err := s.coll.Find(ctx, bson.M{"userId": ownerID}, opts)
	if err != nil {
		return nil, wrapErr("list", collGoals, err)
	}
	defer cursor.Close(ctx)

	goals := []models.Goal{}
	if err := cursor.All(ctx, &goals); err != nil {
		return nil, wrapErr("list", collGoals, err)
	}
	return goals, nil
}

func (s *mongoGoalStore) Create(ctx context.Context, goal *models.Goal) error {
	_, err := s.coll.InsertOne(ctx, goal)
	return wrapErr("create", collGoals, err)
}

func (s *mongoGoalStore) Update(ctx context.Context, id, ownerID string, patch *models.GoalPatch) (*models.Goal, error) {
	set := bson.M{"updatedAt": time.Now()}
	if patch.Title != nil {
		set["title"] = *patch.Title
	}
	if patch.Description != nil {
		set["description"] = *patch.Description
	}
	if patch.Category != nil {
		set["category"] = *patch.Category
	}
	if patch.TargetDate != nil {
		set["targetDate"] = *patch.TargetDate
	}
	if patch.Progress != nil {
		set["progress"] = models.ClampProgress(*patch.Progress)
	}

	var goal models.Goal
	err := s.coll.FindOneAndUpdate(ctx, ownerFilter(id, ownerID), bson.M{"$set": set}, afterUpdate).Decode(&goal)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, wrapErr("update", collGoals, err)
	}
	return &goal, nil
}

func (s *mongoGoalStore) Delete(ctx context.Context, id, ownerID string) (bool, error) {
	res, err := s.coll.DeleteOne(ctx, ownerFilter(id, ownerID))
	if err != nil {
		return false, wrapErr("delete", collGoals, err)
	}
	return res.DeletedCount > 0, nil
}

// --- resources ---

type mongoResourceStore struct {
	coll *mongo.Collection
}

func (s *mongoResourceStore) List(ctx context.Context, ownerID, orderBy string, ascending bool) ([]models.Resource, error) {
	opts := listSort(orderBy, ascending, OrderByCreatedAt, false)
	cursor, err := s.coll.Find(ctx, bson.M{"userId": ownerID}, opts)
	if err != nil {
		return nil, wrapErr("list", collResources, err)
	}
	defer cursor.Close(ctx)

	resources := []models.Resource{}
	if err := cursor.All(ctx, &resources); err != nil {
		return nil, wrapErr("list", collResources, err)
	}
	return resources, nil
}

func (s *mongoResourceStore) Create(ctx context.Context, res *models.Resource) error {
	_, err := s.coll.InsertOne(ctx, res)
	return wrapErr("create", collResources, err)
}

func (s *mongoResourceStore) Update(ctx context.Context, id, ownerID string, patch *models.ResourcePatch) (*models.Resource, error) {
	set := bson.M{"updatedAt": time.Now()}
	if patch.Title != nil {
		set["title"] = *patch.Title
	}
	if patch.URL != nil {
		set["url"] = *patch.URL
	}
	if patch.Description != nil {
		set["description"] = *patch.Description
	}
	if patch.Category != nil {
		set["category"] = *patch.Category
	}
	if patch.RelevanceScore != nil {
		set["relevanceScore"] = models.ClampProgress(*patch.RelevanceScore)
	}

	var resource models.Resource
	err := s.coll.FindOneAndUpdate(ctx, ownerFilter(id, ownerID), bson.M{"$set": set}, afterUpdate).Decode(&resource)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, wrapErr("update", collResources, err)
	}
	return &resource, nil
}

func (s *mongoResourceStore) Delete(ctx context.Context, id, ownerID string) (bool, error) {
	res, err := s.coll.DeleteOne(ctx, ownerFilter(id, ownerID))
	if err != nil {
		return false, wrapErr("delete", collResources, err)
	}
	return res.DeletedCount > 0, nil
}

// DecayRelevance lowers relevanceScore by amount on every resource not
// updated in the last olderThanDays days, flooring at floor. Returns the
// number of documents touched.
func (s *mongoResourceStore) DecayRelevance(ctx context.Context, olderThanDays, amount, floor int) (int64, error) {
	cutoff := time.Now().AddDate(0, 0, -olderThanDays)
	res, err := s.coll.UpdateMany(ctx,
		bson.M{
			"updatedAt":      bson.M{"$lt": cutoff},
			"relevanceScore": bson.M{"$gt": floor},
		},
		bson.M{"$inc": bson.M{"relevanceScore": -amount}},
	)
	if err != nil {
		return 0, wrapErr("decay", collResources, err)
	}
	// Clamp anything the decrement pushed below the floor.
	_, err = s.coll.UpdateMany(ctx,
		bson.M{"relevanceScore": bson.M{"$lt": floor}},
		bson.M{"$set": bson.M{"relevanceScore": floor}},
	)
	if err != nil {
		return res.ModifiedCount, wrapErr("decay", collResources, err)
	}
	return res.ModifiedCount, nil
}

// --- bio ---

type mongoBioStore struct {
	coll *mongo.Collection
}

func (s *mongoBioStore) Get(ctx context.Context, userID string) (string, error) {
	var doc models.UserBio
	err := s.coll.FindOne(ctx, bson.M{"_id": userID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return "", nil
	}
	if err != nil {
		return "", wrapErr("get", collBios, err)
	}
	return doc.Bio, nil
}

func (s *mongoBioStore) Set(ctx context.Context, userID, bio string) error {
	_, err := s.coll.UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$set": bson.M{"bio": bio, "updatedAt": time.Now()}},
		options.Update().SetUpsert(true),
	)
	return wrapErr("set", collBios, err)
}
