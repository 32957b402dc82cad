package migrations

import (
	"context"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureDictionaryIndexes creates the indexes used by dictionary lookups.
// Index creation is idempotent, an "already exists" error is ignored.
func EnsureDictionaryIndexes(ctx context.Context, db *mongo.Database) error {
	fieldIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "field", Value: 1}},
			Options: options.Index().SetName("idx_dictionary_fields_field").SetUnique(true),
		},
	}

	templateIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "templateId", Value: 1}},
			Options: options.Index().SetName("idx_custom_field_templates_template_id").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "association", Value: 1}},
			Options: options.Index().SetName("idx_custom_field_templates_association"),
		},
	}

	if err := createIndexes(ctx, db.Collection("dictionary_fields"), fieldIndexes); err != nil {
		return err
	}

	return createIndexes(ctx, db.Collection("custom_field_templates"), templateIndexes)
}

func createIndexes(ctx context.Context, collection *mongo.Collection, indexes []mongo.IndexModel) error {
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil && !strings.Contains(err.Error(), "already exists") {
		return fmt.Errorf("failed to create indexes on %s: %w", collection.Name(), err)
	}
	return nil
}
