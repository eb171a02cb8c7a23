package quiz

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore persists records in MongoDB collections, one per record kind.
type MongoStore struct {
	users     *mongo.Collection
	materials *mongo.Collection
	quizzes   *mongo.Collection
	attempts  *mongo.Collection
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{
		users:     db.Collection("users"),
		materials: db.Collection("materials"),
		quizzes:   db.Collection("quizzes"),
		attempts:  db.Collection("attempts"),
	}
}

func (s *MongoStore) CreateUser(ctx context.Context, u User) error {
	err := s.users.FindOne(ctx, bson.M{"email": u.Email}).Err()
	if err == nil {
		return ErrEmailTaken
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return err
	}
	_, err = s.users.InsertOne(ctx, u)
	return err
}

func (s *MongoStore) GetUser(ctx context.Context, id string) (User, error) {
	var u User
	err := s.users.FindOne(ctx, bson.M{"_id": id}).Decode(&u)
	return u, mapMongoErr(err)
}

func (s *MongoStore) GetUserByEmail(ctx context.Context, email string) (User, error) {
	var u User
	err := s.users.FindOne(ctx, bson.M{"email": email}).Decode(&u)
	return u, mapMongoErr(err)
}

func (s *MongoStore) UpdateUser(ctx context.Context, u User) error {
	res, err := s.users.UpdateOne(ctx, bson.M{"_id": u.ID}, bson.M{"$set": bson.M{
		"name":          u.Name,
		"password_hash": u.PasswordHash,
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) CreateMaterial(ctx context.Context, m Material) error {
	_, err := s.materials.InsertOne(ctx, m)
	return err
}

func (s *MongoStore) GetMaterial(ctx context.Context, userID, id string) (Material, error) {
	var m Material
	err := s.materials.FindOne(ctx, ownedFilter(userID, id)).Decode(&m)
	return m, mapMongoErr(err)
}

func (s *MongoStore) ListMaterials(ctx context.Context, userID string) ([]Material, error) {
	cur, err := s.materials.Find(ctx, bson.M{"user_id": userID}, newestFirst(0, 0))
	if err != nil {
		return nil, err
	}
	out := []Material{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *MongoStore) UpdateMaterial(ctx context.Context, m Material) error {
	res, err := s.materials.UpdateOne(ctx, ownedFilter(m.UserID, m.ID), bson.M{"$set": bson.M{
		"title":       m.Title,
		"description": m.Description,
		"content":     m.Content,
		"tags":        m.Tags,
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) DeleteMaterial(ctx context.Context, userID, id string) error {
	res, err := s.materials.DeleteOne(ctx, ownedFilter(userID, id))
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) PutQuiz(ctx context.Context, q Quiz) error {
	_, err := s.quizzes.InsertOne(ctx, q)
	return err
}

func (s *MongoStore) GetQuiz(ctx context.Context, userID, id string) (Quiz, error) {
	var q Quiz
	err := s.quizzes.FindOne(ctx, ownedFilter(userID, id)).Decode(&q)
	return q, mapMongoErr(err)
}

func (s *MongoStore) ListQuizzes(ctx context.Context, userID string, opts ListOpts) ([]QuizSummary, Page, error) {
	opts = opts.normalized()

	filter := bson.M{"user_id": userID}
	if opts.Search != "" {
		rx := bson.M{"$regex": opts.Search, "$options": "i"}
		filter["$or"] = bson.A{bson.M{"title": rx}, bson.M{"description": rx}}
	}
	if opts.MaterialID != "" {
		filter["material_id"] = opts.MaterialID
	}

	total, err := s.quizzes.CountDocuments(ctx, filter)
	if err != nil {
		return nil, Page{}, err
	}

	cur, err := s.quizzes.Find(ctx, filter, newestFirst(int64(opts.offset()), int64(opts.Limit)))
	if err != nil {
		return nil, Page{}, err
	}
	var quizzes []Quiz
	if err := cur.All(ctx, &quizzes); err != nil {
		return nil, Page{}, err
	}

	out := []QuizSummary{}
	for _, q := range quizzes {
		sm, err := s.summarize(ctx, q)
		if err != nil {
			return nil, Page{}, err
		}
		out = append(out, sm)
	}
	return out, NewPage(int(total), opts.Page, opts.Limit), nil
}

func (s *MongoStore) summarize(ctx context.Context, q Quiz) (QuizSummary, error) {
	attempts, err := s.attempts.CountDocuments(ctx, bson.M{"user_id": q.UserID, "quiz_id": q.ID})
	if err != nil {
		return QuizSummary{}, err
	}
	title := "Unknown"
	var m Material
	if err := s.materials.FindOne(ctx, bson.M{"_id": q.MaterialID}).Decode(&m); err == nil {
		title = m.Title
	} else if !errors.Is(err, mongo.ErrNoDocuments) {
		return QuizSummary{}, err
	}
	return QuizSummary{
		ID:            q.ID,
		Title:         q.Title,
		Description:   q.Description,
		NumQuestions:  len(q.Questions),
		MaterialID:    q.MaterialID,
		MaterialTitle: title,
		AttemptCount:  int(attempts),
		CreatedAt:     q.CreatedAt,
	}, nil
}

func (s *MongoStore) DeleteQuiz(ctx context.Context, userID, id string) error {
	res, err := s.quizzes.DeleteOne(ctx, ownedFilter(userID, id))
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	_, err = s.attempts.DeleteMany(ctx, bson.M{"quiz_id": id})
	return err
}

func (s *MongoStore) PutAttempt(ctx context.Context, a Attempt) error {
	_, err := s.attempts.InsertOne(ctx, a)
	return err
}

func (s *MongoStore) ListAttempts(ctx context.Context, userID string, opts ListOpts) ([]Attempt, Page, error) {
	opts = opts.normalized()

	filter := bson.M{"user_id": userID}
	if opts.QuizID != "" {
		filter["quiz_id"] = opts.QuizID
	}
	if opts.Search != "" {
		filter["quiz_title"] = bson.M{"$regex": opts.Search, "$options": "i"}
	}

	total, err := s.attempts.CountDocuments(ctx, filter)
	if err != nil {
		return nil, Page{}, err
	}
	cur, err := s.attempts.Find(ctx, filter, newestFirst(int64(opts.offset()), int64(opts.Limit)))
	if err != nil {
		return nil, Page{}, err
	}
	out := []Attempt{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, Page{}, err
	}
	return out, NewPage(int(total), opts.Page, opts.Limit), nil
}

func (s *MongoStore) Dashboard(ctx context.Context, userID string) (Dashboard, error) {
	var d Dashboard

	owner := bson.M{"user_id": userID}
	mats, err := s.materials.CountDocuments(ctx, owner)
	if err != nil {
		return Dashboard{}, err
	}
	quizzes, err := s.quizzes.CountDocuments(ctx, owner)
	if err != nil {
		return Dashboard{}, err
	}
	attempts, err := s.attempts.CountDocuments(ctx, owner)
	if err != nil {
		return Dashboard{}, err
	}
	d.Stats = DashboardStats{
		TotalMaterials: int(mats),
		TotalQuizzes:   int(quizzes),
		TotalAttempts:  int(attempts),
	}

	if attempts > 0 {
		cur, err := s.attempts.Aggregate(ctx, mongo.Pipeline{
			bson.D{{Key: "$match", Value: owner}},
			bson.D{{Key: "$group", Value: bson.M{"_id": nil, "avg": bson.M{"$avg": "$percentage"}}}},
		})
		if err != nil {
			return Dashboard{}, err
		}
		var agg []struct {
			Avg float64 `bson:"avg"`
		}
		if err := cur.All(ctx, &agg); err != nil {
			return Dashboard{}, err
		}
		if len(agg) > 0 {
			d.Stats.AverageScore = agg[0].Avg
		}
	}

	mcur, err := s.materials.Find(ctx, owner, newestFirst(0, 3))
	if err != nil {
		return Dashboard{}, err
	}
	d.RecentMaterials = []Material{}
	if err := mcur.All(ctx, &d.RecentMaterials); err != nil {
		return Dashboard{}, err
	}

	recent, _, err := s.ListQuizzes(ctx, userID, ListOpts{Page: 1, Limit: 3})
	if err != nil {
		return Dashboard{}, err
	}
	d.RecentQuizzes = recent

	d.RecentAttempts, _, err = s.ListAttempts(ctx, userID, ListOpts{Page: 1, Limit: 5})
	if err != nil {
		return Dashboard{}, err
	}
	return d, nil
}

func mapMongoErr(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	return err
}

func ownedFilter(userID, id string) bson.M {
	return bson.M{"_id": id, "user_id": userID}
}

func newestFirst(skip, limit int64) *options.FindOptions {
	fo := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if skip > 0 {
		fo.SetSkip(skip)
	}
	if limit > 0 {
		fo.SetLimit(limit)
	}
	return fo
}
