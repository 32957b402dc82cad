package dictionary

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// Store is the remote source of dictionary data.
type Store interface {
	FieldValues(ctx context.Context, field string) (*FieldValueSet, error)
	AllFieldValues(ctx context.Context) ([]FieldValueSet, error)
	Templates(ctx context.Context) ([]CustomFieldTemplate, error)
}

const (
	fieldsCollection    = "dictionary_fields"
	templatesCollection = "custom_field_templates"
)

type MongoStore struct {
	db *mongo.Database
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{db: db}
}

func (s *MongoStore) FieldValues(ctx context.Context, field string) (*FieldValueSet, error) {
	var set FieldValueSet
	err := s.db.Collection(fieldsCollection).FindOne(ctx, bson.M{"field": field}).Decode(&set)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load field values for %s: %w", field, err)
	}
	return &set, nil
}

func (s *MongoStore) AllFieldValues(ctx context.Context) ([]FieldValueSet, error) {
	cursor, err := s.db.Collection(fieldsCollection).Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to query field values: %w", err)
	}
	defer cursor.Close(ctx)

	var sets []FieldValueSet
	if err := cursor.All(ctx, &sets); err != nil {
		return nil, fmt.Errorf("failed to decode field values: %w", err)
	}
	return sets, nil
}

func (s *MongoStore) Templates(ctx context.Context) ([]CustomFieldTemplate, error) {
	cursor, err := s.db.Collection(templatesCollection).Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to query templates: %w", err)
	}
	defer cursor.Close(ctx)

	var templates []CustomFieldTemplate
	if err := cursor.All(ctx, &templates); err != nil {
		return nil, fmt.Errorf("failed to decode templates: %w", err)
	}
	return templates, nil
}
